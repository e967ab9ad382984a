package sqlite

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "strings"
    "time"

    "linkguard/internal/domain"
)

// Lookup matches hostname exactly or by containing a known domain. An exact
// match wins, then the highest confidence, then the longest domain.
func (db *DB) Lookup(ctx context.Context, hostname string) (*domain.ThreatDomain, error) {
    hostname = strings.ToLower(hostname)
    t := &domain.ThreatDomain{}
    err := db.QueryRowContext(ctx,
        `SELECT domain, threat_type, confidence_level, source, updated_at
         FROM threat_domains
         WHERE domain <> '' AND (domain = ? OR instr(?, domain) > 0)
         ORDER BY (domain = ?) DESC, confidence_level DESC, length(domain) DESC, domain
         LIMIT 1`, hostname, hostname, hostname,
    ).Scan(&t.Domain, &t.ThreatType, &t.ConfidenceLevel, &t.Source, &t.UpdatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, nil
    }
    if err != nil {
        return nil, fmt.Errorf("threat lookup: %w", err)
    }
    return t, nil
}

func (db *DB) Upsert(ctx context.Context, threats []domain.ThreatDomain) (int, error) {
    tx, err := db.BeginTx(ctx, nil)
    if err != nil {
        return 0, fmt.Errorf("begin tx: %w", err)
    }
    defer tx.Rollback()

    stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO threat_domains (domain, threat_type, confidence_level, source, updated_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(domain) DO UPDATE SET
            threat_type = excluded.threat_type,
            confidence_level = excluded.confidence_level,
            source = excluded.source,
            updated_at = excluded.updated_at`)
    if err != nil {
        return 0, fmt.Errorf("prepare: %w", err)
    }
    defer stmt.Close()

    now := time.Now().UTC()
    for _, t := range threats {
        if _, err := stmt.ExecContext(ctx, strings.ToLower(t.Domain), t.ThreatType, t.ConfidenceLevel, t.Source, now); err != nil {
            return 0, fmt.Errorf("upsert %s: %w", t.Domain, err)
        }
    }
    if err := tx.Commit(); err != nil {
        return 0, fmt.Errorf("commit: %w", err)
    }
    return len(threats), nil
}
