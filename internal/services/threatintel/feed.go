package threatintel

import (
    "context"
    "errors"
    "fmt"
    "io"
    "log/slog"
    "os"
    "strings"

    "golang.org/x/net/idna"
    "gopkg.in/yaml.v3"

    "linkguard/internal/domain"
    "linkguard/internal/ports"
)

var ErrInvalidFeed = errors.New("invalid threat feed")

// Feed is the on-disk threat list format:
//
//  source: internal-blocklist
//  domains:
//    - domain: evil.tk
//      threatType: malicious
//      confidenceLevel: 90
type Feed struct {
    Source  string                `yaml:"source"`
    Domains []domain.ThreatDomain `yaml:"domains"`
}

// ParseFeed decodes and validates a feed. Domains are lowercased and
// converted to their ASCII (punycode) form so they compare equal to scanned
// hostnames.
func ParseFeed(r io.Reader) ([]domain.ThreatDomain, error) {
    var f Feed
    dec := yaml.NewDecoder(r)
    dec.KnownFields(true)
    if err := dec.Decode(&f); err != nil {
        if errors.Is(err, io.EOF) {
            return nil, nil
        }
        return nil, fmt.Errorf("%w: %v", ErrInvalidFeed, err)
    }

    out := make([]domain.ThreatDomain, 0, len(f.Domains))
    for i, t := range f.Domains {
        name := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(t.Domain)), ".")
        if name == "" {
            return nil, fmt.Errorf("%w: entry %d has no domain", ErrInvalidFeed, i)
        }
        ascii, err := idna.Lookup.ToASCII(name)
        if err != nil {
            return nil, fmt.Errorf("%w: entry %d domain %q: %v", ErrInvalidFeed, i, name, err)
        }
        name = ascii
        if t.ConfidenceLevel < 0 || t.ConfidenceLevel > 100 {
            return nil, fmt.Errorf("%w: %s confidence %d outside 0..100", ErrInvalidFeed, name, t.ConfidenceLevel)
        }
        t.ThreatType = strings.TrimSpace(t.ThreatType)
        if t.ThreatType == "" {
            return nil, fmt.Errorf("%w: %s has no threatType", ErrInvalidFeed, name)
        }
        if t.Source == "" {
            t.Source = f.Source
        }
        t.Domain = name
        out = append(out, t)
    }
    return out, nil
}

func LoadFile(path string) ([]domain.ThreatDomain, error) {
    f, err := os.Open(path)
    if err != nil {
        return nil, fmt.Errorf("open feed: %w", err)
    }
    defer f.Close()
    return ParseFeed(f)
}

type Service struct {
    repo ports.ThreatRepository
    log  *slog.Logger
}

func New(repo ports.ThreatRepository) *Service {
    return &Service{repo: repo, log: slog.Default()}
}

// Import loads the feed file at path into the repository.
func (s *Service) Import(ctx context.Context, path string) (int, error) {
    threats, err := LoadFile(path)
    if err != nil {
        return 0, err
    }
    n, err := s.repo.Upsert(ctx, threats)
    if err != nil {
        return 0, fmt.Errorf("store threats: %w", err)
    }
    s.log.Info("threat feed imported", "path", path, "domains", n)
    return n, nil
}
