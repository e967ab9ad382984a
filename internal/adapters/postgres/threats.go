package postgres

import (
    "context"
    "errors"
    "fmt"
    "strings"

    "github.com/jackc/pgx/v5"

    "linkguard/internal/domain"
)

// Lookup matches hostname exactly or by containing a known domain. An exact
// match wins, then the highest confidence, then the longest domain.
func (db *DB) Lookup(ctx context.Context, hostname string) (*domain.ThreatDomain, error) {
    t := &domain.ThreatDomain{}
    err := db.Pool.QueryRow(ctx, `
        SELECT domain, threat_type, confidence_level, source, updated_at
        FROM threat_domains
        WHERE domain <> '' AND (domain = $1 OR strpos($1, domain) > 0)
        ORDER BY (domain = $1) DESC, confidence_level DESC, length(domain) DESC, domain
        LIMIT 1
    `, strings.ToLower(hostname)).Scan(&t.Domain, &t.ThreatType, &t.ConfidenceLevel, &t.Source, &t.UpdatedAt)
    if errors.Is(err, pgx.ErrNoRows) {
        return nil, nil
    }
    if err != nil {
        return nil, fmt.Errorf("threat lookup: %w", err)
    }
    return t, nil
}

// Upsert writes the feed entries in one transaction.
func (db *DB) Upsert(ctx context.Context, threats []domain.ThreatDomain) (n int, err error) {
    tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
    if err != nil { return 0, err }
    defer func() {
        if err != nil { _ = tx.Rollback(ctx) } else { err = tx.Commit(ctx) }
    }()

    batch := &pgx.Batch{}
    for _, t := range threats {
        batch.Queue(`
            INSERT INTO threat_domains (domain, threat_type, confidence_level, source)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT (domain) DO UPDATE SET
                threat_type = EXCLUDED.threat_type,
                confidence_level = EXCLUDED.confidence_level,
                source = EXCLUDED.source,
                updated_at = now()
        `, strings.ToLower(t.Domain), t.ThreatType, t.ConfidenceLevel, t.Source)
    }
    if err = tx.SendBatch(ctx, batch).Close(); err != nil {
        return 0, fmt.Errorf("upsert threats: %w", err)
    }
    return len(threats), nil
}
