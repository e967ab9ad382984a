package scanner

import (
    "context"
    "errors"
    "log/slog"
    "net/url"
    "strings"
    "time"
    "unicode/utf16"

    "golang.org/x/net/idna"

    "linkguard/internal/domain"
    "linkguard/internal/ports"
)

const (
    ScanVersion = "2.0"

    MaliciousThreshold  = 70
    SuspiciousThreshold = 30

    longURLLength   = 200
    longURLRisk     = 15
    maxSubdomains   = 3
    subdomainRisk   = 20
    plainHTTPRisk   = 25
    timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

var (
    errNotAbsolute = errors.New("url is not absolute")
    errMissingHost = errors.New("url has no host")
)

// Scorer computes a heuristic verdict for a single URL. It holds no mutable
// state and is safe for concurrent use.
type Scorer struct {
    Threats ports.ThreatLookup
    Now     func() time.Time
    Logger  *slog.Logger
}

func NewScorer(threats ports.ThreatLookup) *Scorer {
    return &Scorer{Threats: threats, Now: time.Now, Logger: slog.Default()}
}

// Classify maps a threat level to its verdict.
func Classify(threatLevel int) domain.Status {
    switch {
    case threatLevel >= MaliciousThreshold:
        return domain.StatusMalicious
    case threatLevel >= SuspiciousThreshold:
        return domain.StatusSuspicious
    default:
        return domain.StatusSafe
    }
}

// Score never fails: a URL that cannot be parsed yields StatusError with the
// parser message in the details.
func (s *Scorer) Score(ctx context.Context, rawurl string) domain.ScanResult {
    u, err := parseAbsolute(rawurl)
    if err != nil {
        return domain.ScanResult{
            Status: domain.StatusError,
            ScanDetails: domain.ScanDetails{Failure: &domain.Failure{
                Error:        "Invalid URL or scan failed",
                ErrorDetails: err.Error(),
            }},
        }
    }

    host := hostname(u)
    threatLevel := 0
    checks := domain.DefaultChecks()
    checks.HTTPSEnabled = u.Scheme == "https"

    if t := s.lookup(ctx, host); t != nil {
        threatLevel += t.ConfidenceLevel
        checks.ThreatIntelligence = t.ThreatType
        checks.ShortenerService = t.ThreatType == "suspicious"
    }

    patterns := []string{}
    for _, r := range Rules {
        if r.Pattern.MatchString(rawurl) {
            patterns = append(patterns, r.Reason)
            threatLevel += r.Risk
            checks.SuspiciousCharacters = true
        }
    }

    if urlLength(rawurl) > longURLLength {
        threatLevel += longURLRisk
        patterns = append(patterns, "Unusually long URL")
    }

    if len(strings.Split(host, "."))-2 > maxSubdomains {
        threatLevel += subdomainRisk
        patterns = append(patterns, "Multiple suspicious subdomains")
    }

    // Counted silently; it never appears in detectedPatterns.
    if !checks.HTTPSEnabled {
        threatLevel += plainHTTPRisk
    }

    return domain.ScanResult{
        Status: Classify(threatLevel),
        ScanDetails: domain.ScanDetails{Assessment: &domain.Assessment{
            Domain:           host,
            Protocol:         u.Scheme + ":",
            ThreatLevel:      threatLevel,
            DetectedPatterns: patterns,
            Checks:           checks,
            ScanTimestamp:    s.now().UTC().Format(timestampLayout),
            ScanVersion:      ScanVersion,
        }},
    }
}

// lookup fails open: an unreachable threat source counts as no match.
func (s *Scorer) lookup(ctx context.Context, host string) *domain.ThreatDomain {
    if s.Threats == nil || host == "" {
        return nil
    }
    t, err := s.Threats.Lookup(ctx, host)
    if err != nil {
        s.logger().Warn("threat lookup failed, continuing without it", "host", host, "error", err)
        return nil
    }
    return t
}

func (s *Scorer) now() time.Time {
    if s.Now == nil {
        return time.Now()
    }
    return s.Now()
}

func (s *Scorer) logger() *slog.Logger {
    if s.Logger == nil {
        return slog.Default()
    }
    return s.Logger
}

func parseAbsolute(rawurl string) (*url.URL, error) {
    u, err := url.Parse(rawurl)
    if err != nil {
        return nil, err
    }
    if !u.IsAbs() {
        return nil, errNotAbsolute
    }
    if (u.Scheme == "http" || u.Scheme == "https") && u.Hostname() == "" {
        return nil, errMissingHost
    }
    return u, nil
}

// urlLength counts UTF-16 code units, so characters outside the BMP count
// twice, as they do in a browser.
func urlLength(s string) int {
    return len(utf16.Encode([]rune(s)))
}

// hostname returns the lowercase ASCII form of the URL host, the way a
// browser URL parser exposes it. IPv6 literals keep their brackets.
func hostname(u *url.URL) string {
    host := strings.ToLower(u.Hostname())
    if strings.Contains(host, ":") {
        return "[" + host + "]"
    }
    if ascii, err := idna.Lookup.ToASCII(host); err == nil {
        return ascii
    }
    return host
}
