package ports

import (
    "context"
    "time"

    "linkguard/internal/domain"
)

// ScanRepository is the append-only scan history store.
type ScanRepository interface {
    Append(ctx context.Context, userID, url string, status domain.Status, details []byte) (id int64, scannedAt time.Time, err error)
    ListRecent(ctx context.Context, userID string, limit int) ([]domain.ScanRecord, error)
    Stats(ctx context.Context, userID string, limit int) ([]domain.ScanStat, error)
}

// ThreatLookup resolves a hostname against known threat domains. A miss is
// (nil, nil).
type ThreatLookup interface {
    Lookup(ctx context.Context, hostname string) (*domain.ThreatDomain, error)
}

// ThreatRepository stores threat domains loaded from feeds.
type ThreatRepository interface {
    ThreatLookup
    Upsert(ctx context.Context, threats []domain.ThreatDomain) (int, error)
}
