package memory

import (
    "context"
    "sort"
    "sync"
    "time"

    "linkguard/internal/domain"
)

// ScanLog keeps scan history in process memory. Contents are lost on
// restart.
type ScanLog struct {
    mu     sync.Mutex
    nextID int64
    rows   []domain.ScanRecord
    Now    func() time.Time
}

func NewScanLog() *ScanLog { return &ScanLog{Now: time.Now} }

func (l *ScanLog) Append(_ context.Context, userID, url string, status domain.Status, details []byte) (int64, time.Time, error) {
    l.mu.Lock()
    defer l.mu.Unlock()
    l.nextID++
    at := l.Now().UTC()
    l.rows = append(l.rows, domain.ScanRecord{
        ID:          l.nextID,
        UserID:      userID,
        URL:         url,
        Status:      status,
        ScanDetails: append([]byte(nil), details...),
        ScannedAt:   at,
    })
    return l.nextID, at, nil
}

func (l *ScanLog) ListRecent(_ context.Context, userID string, limit int) ([]domain.ScanRecord, error) {
    l.mu.Lock()
    defer l.mu.Unlock()
    var out []domain.ScanRecord
    for i := len(l.rows) - 1; i >= 0; i-- {
        if l.rows[i].UserID == userID {
            out = append(out, l.rows[i])
        }
    }
    sort.SliceStable(out, func(i, j int) bool { return out[i].ScannedAt.After(out[j].ScannedAt) })
    if limit > 0 && len(out) > limit {
        out = out[:limit]
    }
    return out, nil
}

func (l *ScanLog) Stats(_ context.Context, userID string, limit int) ([]domain.ScanStat, error) {
    l.mu.Lock()
    defer l.mu.Unlock()
    type key struct {
        day    string
        status domain.Status
    }
    counts := map[key]int{}
    for _, r := range l.rows {
        if r.UserID == userID {
            counts[key{r.ScannedAt.UTC().Format("2006-01-02"), r.Status}]++
        }
    }
    out := make([]domain.ScanStat, 0, len(counts))
    for k, n := range counts {
        out = append(out, domain.ScanStat{Status: k.status, Count: n, ScanDate: k.day})
    }
    sort.Slice(out, func(i, j int) bool {
        if out[i].ScanDate != out[j].ScanDate {
            return out[i].ScanDate > out[j].ScanDate
        }
        return out[i].Status < out[j].Status
    })
    if limit > 0 && len(out) > limit {
        out = out[:limit]
    }
    return out, nil
}

// Store pairs a ScanLog with a ThreatList so the in-memory backend can stand
// in for a database.
type Store struct {
    *ScanLog
    *ThreatList
}

func NewStore() *Store { return &Store{ScanLog: NewScanLog(), ThreatList: NewThreatList()} }

func (*Store) Migrate(context.Context) error { return nil }

func (*Store) Close() error { return nil }
