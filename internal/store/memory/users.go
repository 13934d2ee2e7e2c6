// Package memory holds process-local repository backends.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dkeye/LiveRoom/internal/domain"
)

// Users keeps users in a map guarded by one mutex. Update is all-or-none:
// fn mutates clones, which replace the originals only if fn succeeds.
type Users struct {
	mu    sync.Mutex
	users map[domain.UserID]*domain.User
}

func NewUsers() *Users {
	return &Users{users: make(map[domain.UserID]*domain.User)}
}

func (s *Users) Create(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return domain.ErrUserExists
	}
	c := u.Clone()
	c.Version = 1
	s.users[u.ID] = c
	return nil
}

func (s *Users) Get(_ context.Context, id domain.UserID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (s *Users) List(_ context.Context) ([]*domain.User, error) {
	s.mu.Lock()
	out := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Clone())
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *Users) Delete(_ context.Context, id domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *Users) Update(_ context.Context, ids []domain.UserID, fn func(map[domain.UserID]*domain.User) error) (map[domain.UserID]*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := make(map[domain.UserID]*domain.User, len(ids))
	for _, id := range ids {
		u, ok := s.users[id]
		if !ok {
			return nil, domain.ErrUserNotFound
		}
		work[id] = u.Clone()
	}
	if err := fn(work); err != nil {
		return nil, err
	}
	out := make(map[domain.UserID]*domain.User, len(work))
	for id, u := range work {
		u.Version++
		s.users[id] = u
		out[id] = u.Clone()
	}
	return out, nil
}
