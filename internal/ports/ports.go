package ports

import (
    "context"

    "linkguard/internal/domain"
)

// Scanner scores a URL on behalf of a user and records the outcome.
type Scanner interface {
    Scan(ctx context.Context, userID, rawurl string) (domain.ScanRecord, error)
}

// History serves a user's past scans.
type History interface {
    Recent(ctx context.Context, userID string) ([]domain.ScanRecord, error)
    Stats(ctx context.Context, userID string) ([]domain.ScanStat, error)
    Summary(ctx context.Context, userID string) (domain.ScanSummary, error)
}

// Notifier is told about every persisted scan.
type Notifier interface {
    Publish(rec domain.ScanRecord)
}
