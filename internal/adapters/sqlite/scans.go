package sqlite

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    "linkguard/internal/domain"
)

func (db *DB) Append(ctx context.Context, userID, url string, status domain.Status, details []byte) (int64, time.Time, error) {
    now := time.Now().UTC()
    res, err := db.ExecContext(ctx,
        `INSERT INTO scanned_links (user_id, url, status, scan_details, scanned_at) VALUES (?, ?, ?, ?, ?)`,
        userID, url, string(status), string(details), now,
    )
    if err != nil {
        return 0, time.Time{}, fmt.Errorf("insert scan: %w", err)
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, time.Time{}, fmt.Errorf("insert scan id: %w", err)
    }
    return id, now, nil
}

func (db *DB) ListRecent(ctx context.Context, userID string, limit int) ([]domain.ScanRecord, error) {
    rows, err := db.QueryContext(ctx,
        `SELECT id, user_id, url, status, scan_details, scanned_at
         FROM scanned_links WHERE user_id = ?
         ORDER BY scanned_at DESC, id DESC LIMIT ?`, userID, limit,
    )
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
        r.ScanDetails = rawDetails(details)
        out = append(out, r)
    }
    return out, rows.Err()
}

func (db *DB) Stats(ctx context.Context, userID string, limit int) ([]domain.ScanStat, error) {
    rows, err := db.QueryContext(ctx,
        `SELECT status, COUNT(*), DATE(scanned_at) AS scan_date
         FROM scanned_links WHERE user_id = ?
         GROUP BY status, DATE(scanned_at)
         ORDER BY scan_date DESC, status LIMIT ?`, userID, limit,
    )
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

func rawDetails(s string) json.RawMessage {
    if s == "" {
        return json.RawMessage("{}")
    }
    return json.RawMessage(s)
}
