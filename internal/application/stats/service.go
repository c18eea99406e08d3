package stats

import (
	"context"

	codesdomain "github.com/realscan/realscan/internal/domain/codes"
	scansdomain "github.com/realscan/realscan/internal/domain/scans"
)

// How many recent scans the dashboard shows.
const recentScanCount = 5

// Stats is the dashboard aggregate.
type Stats struct {
	TotalCodes  int64                     `json:"totalCodes"`
	ActiveCodes int64                     `json:"activeCodes"`
	TotalScans  int64                     `json:"totalScans"`
	RecentScans []*scansdomain.ScanResult `json:"recentScans"`
}

// Service computes dashboard stats on demand. The four reads are
// independent snapshots; a code revoked between two of them may be
// reflected in one and not the other. That is accepted, not a bug to
// fix with locking.
type Service struct {
	Codes codesdomain.Repository
	Scans scansdomain.Repository
}

func (s *Service) Compute(ctx context.Context) (*Stats, error) {
	totalCodes, err := s.Codes.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	activeCodes, err := s.Codes.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	totalScans, err := s.Scans.Count(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.Scans.Recent(ctx, recentScanCount)
	if err != nil {
		return nil, err
	}
	return &Stats{
		TotalCodes:  totalCodes,
		ActiveCodes: activeCodes,
		TotalScans:  totalScans,
		RecentScans: recent,
	}, nil
}
