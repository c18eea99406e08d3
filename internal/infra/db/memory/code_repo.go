// Package memory holds map-backed store implementations used by tests
// and local development. Semantics mirror the SQL repositories,
// including Deactivate's not-found/no-op distinction.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/realscan/realscan/internal/domain/codes"
)

type CodeRepository struct {
	mu    sync.RWMutex
	codes map[domain.CodeID]*domain.AccessCode
}

func NewCodeRepository() *CodeRepository {
	return &CodeRepository{codes: make(map[domain.CodeID]*domain.AccessCode)}
}

func (r *CodeRepository) Save(_ context.Context, c *domain.AccessCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.codes[c.ID] = &cp
	return nil
}

func (r *CodeRepository) Get(_ context.Context, id domain.CodeID) (*domain.AccessCode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *CodeRepository) List(_ context.Context) ([]*domain.AccessCode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.AccessCode, 0, len(r.codes))
	for _, c := range r.codes {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *CodeRepository) Deactivate(_ context.Context, id domain.CodeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.codes[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Active = false
	return nil
}

func (r *CodeRepository) DeactivateExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.codes {
		if c.Active && c.ExpiresAt.Before(now) {
			c.Active = false
			n++
		}
	}
	return n, nil
}

func (r *CodeRepository) CountAll(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.codes)), nil
}

func (r *CodeRepository) CountActive(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, c := range r.codes {
		if c.Active {
			n++
		}
	}
	return n, nil
}
