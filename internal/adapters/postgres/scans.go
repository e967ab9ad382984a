package postgres

import (
    "context"
    "fmt"
    "time"

    "linkguard/internal/domain"
)

// Append inserts one history row; id and scanned_at come from the database.
func (db *DB) Append(ctx context.Context, userID, url string, status domain.Status, details []byte) (int64, time.Time, error) {
    var id int64
    var scannedAt time.Time
    err := db.Pool.QueryRow(ctx, `
        INSERT INTO scanned_links (user_id, url, status, scan_details)
        VALUES ($1, $2, $3, $4::jsonb)
        RETURNING id, scanned_at
    `, userID, url, string(status), string(details)).Scan(&id, &scannedAt)
    if err != nil {
        return 0, time.Time{}, fmt.Errorf("insert scan: %w", err)
    }
    return id, scannedAt, nil
}

func (db *DB) ListRecent(ctx context.Context, userID string, limit int) ([]domain.ScanRecord, error) {
    rows, err := db.Pool.Query(ctx, `
        SELECT id, user_id, url, status, scan_details::text, scanned_at
        FROM scanned_links
        WHERE user_id = $1
        ORDER BY scanned_at DESC, id DESC
        LIMIT $2
    `, userID, limit)
    if err != nil {
        return nil, fmt.Errorf("list scans: %w", err)
    }
    defer rows.Close()

    var out []domain.ScanRecord
    for rows.Next() {
        var r domain.ScanRecord
        var status, details string
        if err := rows.Scan(&r.ID, &r.UserID, &r.URL, &status, &details, &r.ScannedAt); err != nil {
            return nil, fmt.Errorf("scan row: %w", err)
        }
        r.Status = domain.Status(status)
        r.ScanDetails = []byte(details)
        out = append(out, r)
    }
    return out, rows.Err()
}

func (db *DB) Stats(ctx context.Context, userID string, limit int) ([]domain.ScanStat, error) {
    rows, err := db.Pool.Query(ctx, `
        SELECT status, COUNT(*), to_char(scanned_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS scan_date
        FROM scanned_links
        WHERE user_id = $1
        GROUP BY status, scan_date
        ORDER BY scan_date DESC, status
        LIMIT $2
    `, userID, limit)
    if err != nil {
        return nil, fmt.Errorf("scan stats: %w", err)
    }
    defer rows.Close()

    var out []domain.ScanStat
    for rows.Next() {
        var s domain.ScanStat
        var status string
        if err := rows.Scan(&status, &s.Count, &s.ScanDate); err != nil {
            return nil, fmt.Errorf("scan stat row: %w", err)
        }
        s.Status = domain.Status(status)
        out = append(out, s)
    }
    return out, rows.Err()
}
