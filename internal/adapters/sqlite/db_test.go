package sqlite

import (
    "context"
    "encoding/json"
    "path/filepath"
    "testing"

    "linkguard/internal/domain"
)

func openTestDB(t *testing.T) *DB {
    t.Helper()
    db, err := Open(filepath.Join(t.TempDir(), "test.db"))
    if err != nil {
        t.Fatalf("Open() error: %v", err)
    }
    t.Cleanup(func() { db.Close() })
    if err := db.Migrate(context.Background()); err != nil {
        t.Fatalf("Migrate() error: %v", err)
    }
    return db
}

func TestMigrateIsRepeatable(t *testing.T) {
    db := openTestDB(t)
    if err := db.Migrate(context.Background()); err != nil {
        t.Fatalf("second Migrate() error: %v", err)
    }
}

func TestAppendAndListRecent(t *testing.T) {
    ctx := context.Background()
    db := openTestDB(t)

    var ids []int64
    for _, u := range []string{"https://a.example", "https://b.example", "https://c.example"} {
        id, at, err := db.Append(ctx, "alice", u, domain.StatusSafe, []byte(`{"domain":"x"}`))
        if err != nil {
            t.Fatalf("Append(%s) error: %v", u, err)
        }
        if at.IsZero() {
            t.Errorf("Append(%s) returned zero timestamp", u)
        }
        ids = append(ids, id)
    }
    if _, _, err := db.Append(ctx, "bob", "https://bob.example", domain.StatusMalicious, []byte(`{}`)); err != nil {
        t.Fatal(err)
    }

    for i := 1; i < len(ids); i++ {
        if ids[i] <= ids[i-1] {
            t.Errorf("ids not increasing: %v", ids)
        }
    }

    recs, err := db.ListRecent(ctx, "alice", 50)
    if err != nil {
        t.Fatalf("ListRecent() error: %v", err)
    }
    if len(recs) != 3 {
        t.Fatalf("got %d records, want 3", len(recs))
    }
    if recs[0].URL != "https://c.example" || recs[2].URL != "https://a.example" {
        t.Errorf("records not newest first: %s, %s", recs[0].URL, recs[2].URL)
    }
    for _, r := range recs {
        if r.UserID != "alice" {
            t.Errorf("leaked record of %q", r.UserID)
        }
        if !json.Valid(r.ScanDetails) {
            t.Errorf("invalid details %s", r.ScanDetails)
        }
    }

    limited, err := db.ListRecent(ctx, "alice", 2)
    if err != nil {
        t.Fatal(err)
    }
    if len(limited) != 2 {
        t.Errorf("limit ignored: got %d", len(limited))
    }

    none, err := db.ListRecent(ctx, "carol", 50)
    if err != nil {
        t.Fatal(err)
    }
    if len(none) != 0 {
        t.Errorf("expected no records for carol, got %d", len(none))
    }
}

func TestStats(t *testing.T) {
    ctx := context.Background()
    db := openTestDB(t)

    for _, s := range []domain.Status{domain.StatusSafe, domain.StatusSafe, domain.StatusMalicious} {
        if _, _, err := db.Append(ctx, "alice", "https://x.example", s, []byte(`{}`)); err != nil {
            t.Fatal(err)
        }
    }
    if _, _, err := db.Append(ctx, "bob", "https://x.example", domain.StatusSafe, []byte(`{}`)); err != nil {
        t.Fatal(err)
    }

    stats, err := db.Stats(ctx, "alice", 30)
    if err != nil {
        t.Fatalf("Stats() error: %v", err)
    }
    counts := map[domain.Status]int{}
    for _, s := range stats {
        if len(s.ScanDate) != len("2006-01-02") {
            t.Errorf("unexpected scan date %q", s.ScanDate)
        }
        counts[s.Status] += s.Count
    }
    if counts[domain.StatusSafe] != 2 || counts[domain.StatusMalicious] != 1 {
        t.Errorf("counts = %v", counts)
    }
}

func TestThreatLookup(t *testing.T) {
    ctx := context.Background()
    db := openTestDB(t)

    n, err := db.Upsert(ctx, []domain.ThreatDomain{
        {Domain: "PayPal.com", ThreatType: "phishing", ConfidenceLevel: 60},
        {Domain: "evil.tk", ThreatType: "malicious", ConfidenceLevel: 90},
        {Domain: "bit.ly", ThreatType: "suspicious", ConfidenceLevel: 30},
    })
    if err != nil || n != 3 {
        t.Fatalf("Upsert() = %d, %v", n, err)
    }

    tests := []struct {
        host       string
        wantDomain string
    }{
        {"paypal.com", "paypal.com"},
        {"paypal.com.evil.tk", "evil.tk"},
        {"bit.ly", "bit.ly"},
        {"example.com", ""},
    }
    for _, tt := range tests {
        got, err := db.Lookup(ctx, tt.host)
        if err != nil {
            t.Fatalf("Lookup(%s) error: %v", tt.host, err)
        }
        if tt.wantDomain == "" {
            if got != nil {
                t.Errorf("Lookup(%s) = %+v, want nil", tt.host, got)
            }
            continue
        }
        if got == nil || got.Domain != tt.wantDomain {
            t.Errorf("Lookup(%s) = %+v, want %s", tt.host, got, tt.wantDomain)
        }
    }

    if _, err := db.Upsert(ctx, []domain.ThreatDomain{{Domain: "bit.ly", ThreatType: "malicious", ConfidenceLevel: 75}}); err != nil {
        t.Fatal(err)
    }
    got, err := db.Lookup(ctx, "bit.ly")
    if err != nil {
        t.Fatal(err)
    }
    if got.ThreatType != "malicious" || got.ConfidenceLevel != 75 {
        t.Errorf("upsert did not update: %+v", got)
    }
}
