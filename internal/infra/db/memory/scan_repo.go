package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	domain "github.com/realscan/realscan/internal/domain/scans"
)

type ScanRepository struct {
	mu      sync.RWMutex
	results []*domain.ScanResult
}

func NewScanRepository() *ScanRepository {
	return &ScanRepository{}
}

func (r *ScanRepository) Save(_ context.Context, s *domain.ScanResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	cp.Results = append([]domain.GameResult(nil), s.Results...)
	r.results = append(r.results, &cp)
	return nil
}

// sorted returns copies newest first; callers hold no lock after.
func (r *ScanRepository) sorted(subjectID string) []*domain.ScanResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.ScanResult, 0, len(r.results))
	for _, s := range r.results {
		if subjectID != "" && s.SubjectID != subjectID {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

func (r *ScanRepository) Paginate(_ context.Context, subjectID string, page, pageSize int) (domain.PaginatedResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	all := r.sorted(subjectID)
	total := int64(len(all))

	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}

	return domain.PaginatedResult{
		Results:     all[start:end],
		CurrentPage: page,
		PageSize:    pageSize,
		Total:       total,
		TotalPages:  int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

func (r *ScanRepository) Recent(_ context.Context, limit int) ([]*domain.ScanResult, error) {
	if limit <= 0 {
		limit = 5
	}
	all := r.sorted("")
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *ScanRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.results)), nil
}
