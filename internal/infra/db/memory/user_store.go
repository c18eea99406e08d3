package memory

import (
	"context"
	"sync"
	"time"

	domain "github.com/realscan/realscan/internal/domain/users"
)

type UserStore struct {
	mu    sync.RWMutex
	users map[string]*domain.User // keyed by username
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*domain.User)}
}

func (s *UserStore) Save(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.Username] = &cp
	return nil
}

func (s *UserStore) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *UserStore) UpdateLastLogin(_ context.Context, id string, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			tt := t
			u.LastLogin = &tt
			return nil
		}
	}
	return domain.ErrNotFound
}
