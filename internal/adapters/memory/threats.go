package memory

import (
    "context"
    "strings"
    "sync"
    "time"

    "linkguard/internal/domain"
)

// ThreatList is an in-process threat domain table, used by the CLI and
// tests in place of a database.
type ThreatList struct {
    mu      sync.RWMutex
    entries map[string]domain.ThreatDomain
}

func NewThreatList(threats ...domain.ThreatDomain) *ThreatList {
    l := &ThreatList{entries: make(map[string]domain.ThreatDomain)}
    _, _ = l.Upsert(context.Background(), threats)
    return l
}

func (l *ThreatList) Upsert(_ context.Context, threats []domain.ThreatDomain) (int, error) {
    l.mu.Lock()
    defer l.mu.Unlock()
    now := time.Now().UTC()
    for _, t := range threats {
        t.Domain = strings.ToLower(t.Domain)
        if t.UpdatedAt.IsZero() {
            t.UpdatedAt = now
        }
        l.entries[t.Domain] = t
    }
    return len(threats), nil
}

// Lookup matches hostname exactly or by containing a known domain. An exact
// match wins, then the highest confidence, then the longest domain.
func (l *ThreatList) Lookup(_ context.Context, hostname string) (*domain.ThreatDomain, error) {
    hostname = strings.ToLower(hostname)
    l.mu.RLock()
    defer l.mu.RUnlock()

    if t, ok := l.entries[hostname]; ok {
        return &t, nil
    }
    var best *domain.ThreatDomain
    for _, t := range l.entries {
        if t.Domain == "" || !strings.Contains(hostname, t.Domain) {
            continue
        }
        if best == nil || better(t, *best) {
            t := t
            best = &t
        }
    }
    return best, nil
}

func (l *ThreatList) Len() int {
    l.mu.RLock()
    defer l.mu.RUnlock()
    return len(l.entries)
}

func better(a, b domain.ThreatDomain) bool {
    if a.ConfidenceLevel != b.ConfidenceLevel {
        return a.ConfidenceLevel > b.ConfidenceLevel
    }
    if len(a.Domain) != len(b.Domain) {
        return len(a.Domain) > len(b.Domain)
    }
    return a.Domain < b.Domain
}
