package scanner

import (
    "context"
    "encoding/json"
    "errors"
    "reflect"
    "strings"
    "testing"
    "time"

    "linkguard/internal/adapters/memory"
    "linkguard/internal/domain"
)

func fixedClock() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

func newTestScorer(threats ...domain.ThreatDomain) *Scorer {
    s := NewScorer(memory.NewThreatList(threats...))
    s.Now = fixedClock
    return s
}

type failingLookup struct{}

func (failingLookup) Lookup(context.Context, string) (*domain.ThreatDomain, error) {
    return nil, errors.New("connection refused")
}

func TestClassify(t *testing.T) {
    tests := []struct {
        level int
        want  domain.Status
    }{
        {0, domain.StatusSafe},
        {29, domain.StatusSafe},
        {30, domain.StatusSuspicious},
        {69, domain.StatusSuspicious},
        {70, domain.StatusMalicious},
        {500, domain.StatusMalicious},
    }
    for _, tt := range tests {
        if got := Classify(tt.level); got != tt.want {
            t.Errorf("Classify(%d) = %s, want %s", tt.level, got, tt.want)
        }
    }
}

func TestScoreThresholdBoundaries(t *testing.T) {
    tests := []struct {
        confidence int
        want       domain.Status
    }{
        {29, domain.StatusSafe},
        {30, domain.StatusSuspicious},
        {69, domain.StatusSuspicious},
        {70, domain.StatusMalicious},
    }
    for _, tt := range tests {
        s := newTestScorer(domain.ThreatDomain{Domain: "edge.test", ThreatType: "phishing", ConfidenceLevel: tt.confidence})
        res := s.Score(context.Background(), "https://edge.test")
        if res.ScanDetails.Assessment == nil {
            t.Fatalf("confidence %d: missing assessment", tt.confidence)
        }
        if got := res.ScanDetails.ThreatLevel; got != tt.confidence {
            t.Errorf("confidence %d: threatLevel = %d", tt.confidence, got)
        }
        if res.Status != tt.want {
            t.Errorf("confidence %d: status = %s, want %s", tt.confidence, res.Status, tt.want)
        }
    }
}

func TestScore(t *testing.T) {
    threats := []domain.ThreatDomain{
        {Domain: "evil.com", ThreatType: "malicious", ConfidenceLevel: 80},
        {Domain: "paypal.com", ThreatType: "phishing", ConfidenceLevel: 90},
        {Domain: "bit.ly", ThreatType: "suspicious", ConfidenceLevel: 40},
    }
    tests := []struct {
        name         string
        url          string
        wantStatus   domain.Status
        wantLevel    int
        wantPatterns []string
        wantIntel    string
    }{
        {
            name:         "known malicious host",
            url:          "https://evil.com",
            wantStatus:   domain.StatusMalicious,
            wantLevel:    80,
            wantPatterns: []string{},
            wantIntel:    "malicious",
        },
        {
            name:         "plain http only",
            url:          "http://example.com",
            wantStatus:   domain.StatusSafe,
            wantLevel:    25,
            wantPatterns: []string{},
            wantIntel:    "clean",
        },
        {
            name:       "punycode brand with numbers on free tld",
            url:        "https://xn--paypal123.tk",
            wantStatus: domain.StatusMalicious,
            wantLevel:  30 + 20 + 25 + 50,
            wantPatterns: []string{
                "Punycode detected",
                "Multiple consecutive hyphens",
                "Free domain extension",
                "Brand name with numbers (suspicious)",
            },
            wantIntel: "clean",
        },
        {
            name:       "brand impersonation",
            url:        "https://paypal.tk/login",
            wantStatus: domain.StatusMalicious,
            wantLevel:  25 + 70,
            wantPatterns: []string{
                "Free domain extension",
                "Brand impersonation with suspicious TLD",
            },
            wantIntel: "clean",
        },
        {
            name:         "known domain embedded in longer host",
            url:          "https://paypal.com.evil.tk",
            wantStatus:   domain.StatusMalicious,
            wantLevel:    90 + 25,
            wantPatterns: []string{"Free domain extension"},
            wantIntel:    "phishing",
        },
        {
            name:         "ip literal over http",
            url:          "http://192.168.0.1/login",
            wantStatus:   domain.StatusSuspicious,
            wantLevel:    35 + 25,
            wantPatterns: []string{"IP address instead of domain"},
            wantIntel:    "clean",
        },
        {
            name:         "cyrillic homograph",
            url:          "https://аpple.com",
            wantStatus:   domain.StatusSuspicious,
            wantLevel:    40,
            wantPatterns: []string{"Cyrillic characters (possible homograph attack)"},
            wantIntel:    "clean",
        },
        {
            name:         "deep subdomains",
            url:          "https://a.b.c.d.example.com",
            wantStatus:   domain.StatusSafe,
            wantLevel:    20,
            wantPatterns: []string{"Multiple suspicious subdomains"},
            wantIntel:    "clean",
        },
        {
            name:         "long url",
            url:          "https://example.com/" + strings.Repeat("a", 200),
            wantStatus:   domain.StatusSafe,
            wantLevel:    15,
            wantPatterns: []string{"Unusually long URL"},
            wantIntel:    "clean",
        },
        {
            name:         "long url counted in utf-16 units",
            url:          "https://example.com/" + strings.Repeat("😀", 101),
            wantStatus:   domain.StatusSafe,
            wantLevel:    15,
            wantPatterns: []string{"Unusually long URL"},
            wantIntel:    "clean",
        },
        {
            name:         "ipv6 literal over http",
            url:          "http://[::1]:8080/",
            wantStatus:   domain.StatusSafe,
            wantLevel:    25,
            wantPatterns: []string{},
            wantIntel:    "clean",
        },
        {
            name:         "tld rule ignores path suffix",
            url:          "https://example.com/file.tk",
            wantStatus:   domain.StatusSafe,
            wantLevel:    0,
            wantPatterns: []string{},
            wantIntel:    "clean",
        },
    }

    s := newTestScorer(threats...)
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            res := s.Score(context.Background(), tt.url)
            a := res.ScanDetails.Assessment
            if a == nil {
                t.Fatalf("expected assessment, got failure %+v", res.ScanDetails.Failure)
            }
            if res.Status != tt.wantStatus {
                t.Errorf("status = %s, want %s", res.Status, tt.wantStatus)
            }
            if a.ThreatLevel != tt.wantLevel {
                t.Errorf("threatLevel = %d, want %d", a.ThreatLevel, tt.wantLevel)
            }
            if !reflect.DeepEqual(a.DetectedPatterns, tt.wantPatterns) {
                t.Errorf("patterns = %q, want %q", a.DetectedPatterns, tt.wantPatterns)
            }
            if a.Checks.ThreatIntelligence != tt.wantIntel {
                t.Errorf("threatIntelligence = %q, want %q", a.Checks.ThreatIntelligence, tt.wantIntel)
            }
            if a.Checks.SuspiciousCharacters != (len(tt.wantPatterns) > 0 && tt.wantPatterns[0] != "Unusually long URL" && tt.wantPatterns[0] != "Multiple suspicious subdomains") {
                t.Errorf("suspiciousCharacters = %v", a.Checks.SuspiciousCharacters)
            }
            if a.ScanVersion != ScanVersion {
                t.Errorf("scanVersion = %q", a.ScanVersion)
            }
        })
    }
}

func TestScoreChecks(t *testing.T) {
    s := newTestScorer(domain.ThreatDomain{Domain: "bit.ly", ThreatType: "suspicious", ConfidenceLevel: 40})

    res := s.Score(context.Background(), "https://bit.ly/abc")
    a := res.ScanDetails.Assessment
    if !a.Checks.ShortenerService {
        t.Error("expected shortenerService for a suspicious-classified domain")
    }
    if !a.Checks.HTTPSEnabled {
        t.Error("expected httpsEnabled")
    }
    if a.Domain != "bit.ly" || a.Protocol != "https:" {
        t.Errorf("domain/protocol = %q %q", a.Domain, a.Protocol)
    }
    if a.ScanTimestamp != "2024-03-01T12:00:00.000Z" {
        t.Errorf("scanTimestamp = %q", a.ScanTimestamp)
    }
    if a.Checks.DomainReputation != "clean" || a.Checks.RedirectAnalysis != "none" || !a.Checks.CertificateValid {
        t.Errorf("unexpected default checks %+v", a.Checks)
    }

    res = s.Score(context.Background(), "http://[::1]:8080/")
    if res.ScanDetails.Domain != "[::1]" {
        t.Errorf("ipv6 domain = %q, want [::1]", res.ScanDetails.Domain)
    }

    res = s.Score(context.Background(), "https://аpple.com")
    if !strings.HasPrefix(res.ScanDetails.Domain, "xn--") {
        t.Errorf("expected ascii hostname, got %q", res.ScanDetails.Domain)
    }
}

func TestScoreMalformed(t *testing.T) {
    s := newTestScorer()
    for _, in := range []string{"not a url", "http://", "://missing-scheme", ""} {
        res := s.Score(context.Background(), in)
        if res.Status != domain.StatusError {
            t.Errorf("%q: status = %s, want error", in, res.Status)
            continue
        }
        if res.ScanDetails.Failure == nil || res.ScanDetails.Error == "" || res.ScanDetails.ErrorDetails == "" {
            t.Errorf("%q: expected populated failure, got %+v", in, res.ScanDetails.Failure)
        }
        if res.ScanDetails.Assessment != nil {
            t.Errorf("%q: unexpected assessment", in)
        }
        raw, err := json.Marshal(res.ScanDetails)
        if err != nil {
            t.Fatal(err)
        }
        if strings.Contains(string(raw), "threatLevel") {
            t.Errorf("%q: error details carry threatLevel: %s", in, raw)
        }
    }
}

func TestScoreIdempotent(t *testing.T) {
    s := NewScorer(memory.NewThreatList(domain.ThreatDomain{Domain: "evil.com", ThreatType: "malicious", ConfidenceLevel: 75}))
    url := "http://login.evil.com--secure.tk/paypal1"

    first := s.Score(context.Background(), url)
    time.Sleep(2 * time.Millisecond)
    second := s.Score(context.Background(), url)

    first.ScanDetails.ScanTimestamp = ""
    second.ScanDetails.ScanTimestamp = ""
    if !reflect.DeepEqual(first, second) {
        t.Errorf("results differ:\n%+v\n%+v", first.ScanDetails.Assessment, second.ScanDetails.Assessment)
    }
}

func TestScoreLookupFailsOpen(t *testing.T) {
    s := NewScorer(failingLookup{})
    s.Now = fixedClock
    res := s.Score(context.Background(), "https://example.com")
    if res.Status != domain.StatusSafe {
        t.Fatalf("status = %s, want safe", res.Status)
    }
    if res.ScanDetails.Checks.ThreatIntelligence != "clean" {
        t.Errorf("threatIntelligence = %q", res.ScanDetails.Checks.ThreatIntelligence)
    }
}

func TestScoreDetailsJSON(t *testing.T) {
    s := newTestScorer()
    raw, err := json.Marshal(s.Score(context.Background(), "https://example.com").ScanDetails)
    if err != nil {
        t.Fatal(err)
    }
    var got map[string]any
    if err := json.Unmarshal(raw, &got); err != nil {
        t.Fatal(err)
    }
    for _, key := range []string{"domain", "protocol", "threatLevel", "detectedPatterns", "checks", "scanTimestamp", "scanVersion"} {
        if _, ok := got[key]; !ok {
            t.Errorf("missing key %q in %s", key, raw)
        }
    }
    if patterns, ok := got["detectedPatterns"].([]any); !ok || len(patterns) != 0 {
        t.Errorf("detectedPatterns = %v, want empty array", got["detectedPatterns"])
    }
    if _, ok := got["error"]; ok {
        t.Errorf("unexpected error key in %s", raw)
    }
}
