package history

import (
    "context"

    "linkguard/internal/domain"
    "linkguard/internal/ports"
)

const (
    PageSize   = 50
    StatsLimit = 30
)

type Service struct {
    scans ports.ScanRepository
}

func New(scans ports.ScanRepository) *Service { return &Service{scans: scans} }

// Recent returns the user's latest scans, newest first. Never nil.
func (s *Service) Recent(ctx context.Context, userID string) ([]domain.ScanRecord, error) {
    recs, err := s.scans.ListRecent(ctx, userID, PageSize)
    if err != nil {
        return nil, err
    }
    if recs == nil {
        recs = []domain.ScanRecord{}
    }
    return recs, nil
}

func (s *Service) Stats(ctx context.Context, userID string) ([]domain.ScanStat, error) {
    stats, err := s.scans.Stats(ctx, userID, StatsLimit)
    if err != nil {
        return nil, err
    }
    if stats == nil {
        stats = []domain.ScanStat{}
    }
    return stats, nil
}

// Summary counts verdicts over the same page Recent returns.
func (s *Service) Summary(ctx context.Context, userID string) (domain.ScanSummary, error) {
    recs, err := s.Recent(ctx, userID)
    if err != nil {
        return domain.ScanSummary{}, err
    }
    return Summarize(recs), nil
}

func Summarize(recs []domain.ScanRecord) domain.ScanSummary {
    var sum domain.ScanSummary
    for _, r := range recs {
        sum.Total++
        switch r.Status {
        case domain.StatusSafe:
            sum.Safe++
        case domain.StatusSuspicious:
            sum.Suspicious++
        case domain.StatusMalicious:
            sum.Malicious++
        default:
            sum.Errors++
        }
    }
    return sum
}
