package scanner

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log/slog"
    "strings"
    "time"

    "linkguard/internal/domain"
    "linkguard/internal/ports"
)

// ErrStorage marks a scan whose verdict was computed but not persisted.
var ErrStorage = errors.New("scan history unavailable")

type Service struct {
    scorer   *Scorer
    scans    ports.ScanRepository
    notifier ports.Notifier
    log      *slog.Logger
}

// New wires the scorer to the history store. notifier may be nil.
func New(scorer *Scorer, scans ports.ScanRepository, notifier ports.Notifier) *Service {
    return &Service{scorer: scorer, scans: scans, notifier: notifier, log: slog.Default()}
}

// NormalizeURL prefixes https:// onto input that does not already start with
// an http scheme.
func NormalizeURL(raw string) string {
    raw = strings.TrimSpace(raw)
    if raw == "" || strings.HasPrefix(strings.ToLower(raw), "http") {
        return raw
    }
    return "https://" + raw
}

// Scan scores rawurl and appends the outcome to userID's history. Unparseable
// input is recorded as an error verdict like any other. When the append
// fails the computed record is still returned, alongside an error wrapping
// ErrStorage.
func (s *Service) Scan(ctx context.Context, userID, rawurl string) (domain.ScanRecord, error) {
    rawurl = NormalizeURL(rawurl)
    res := s.scorer.Score(ctx, rawurl)
    details, err := json.Marshal(res.ScanDetails)
    if err != nil {
        return domain.ScanRecord{}, fmt.Errorf("encode scan details: %w", err)
    }
    rec := domain.ScanRecord{
        UserID:      userID,
        URL:         rawurl,
        Status:      res.Status,
        ScanDetails: details,
    }

    id, scannedAt, err := s.scans.Append(ctx, userID, rawurl, res.Status, details)
    if err != nil {
        rec.ScannedAt = time.Now().UTC()
        s.log.Error("persist scan failed", "user", userID, "url", rawurl, "error", err)
        s.recordFailure(ctx, userID, rawurl, err)
        return rec, fmt.Errorf("%w: %w", ErrStorage, err)
    }
    rec.ID, rec.ScannedAt = id, scannedAt
    if s.notifier != nil {
        s.notifier.Publish(rec)
    }
    return rec, nil
}

// recordFailure makes a best-effort attempt to leave an error row behind.
func (s *Service) recordFailure(ctx context.Context, userID, rawurl string, cause error) {
    details, _ := json.Marshal(FailureDetails(cause))
    if _, _, err := s.scans.Append(ctx, userID, rawurl, domain.StatusError, details); err != nil {
        s.log.Warn("persist error record failed", "user", userID, "error", err)
    }
}

// FailureDetails is the detail block reported when a scan could not be
// completed end to end.
func FailureDetails(cause error) domain.ScanDetails {
    msg := "Unknown error"
    if cause != nil {
        msg = cause.Error()
    }
    return domain.ScanDetails{Failure: &domain.Failure{Error: "Failed to scan URL", ErrorDetails: msg}}
}
