package memory

import (
	"context"
	"sync"

	"github.com/dkeye/LiveRoom/internal/domain"
)

type edge struct {
	from, to domain.UserID
}

// Follows stores directed follow edges. Counts are computed from the edge
// set on every call.
type Follows struct {
	mu        sync.RWMutex
	edges     map[edge]struct{}
	following map[domain.UserID]map[domain.UserID]struct{}
	fans      map[domain.UserID]map[domain.UserID]struct{}
}

func NewFollows() *Follows {
	return &Follows{
		edges:     make(map[edge]struct{}),
		following: make(map[domain.UserID]map[domain.UserID]struct{}),
		fans:      make(map[domain.UserID]map[domain.UserID]struct{}),
	}
}

func (f *Follows) Follow(_ context.Context, follower, followed domain.UserID) (bool, error) {
	if follower == followed {
		return false, domain.ErrSelfFollow
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e := edge{follower, followed}
	if _, ok := f.edges[e]; ok {
		return false, nil
	}
	f.edges[e] = struct{}{}
	addTo(f.following, follower, followed)
	addTo(f.fans, followed, follower)
	return true, nil
}

func (f *Follows) Unfollow(_ context.Context, follower, followed domain.UserID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := edge{follower, followed}
	if _, ok := f.edges[e]; !ok {
		return false, nil
	}
	delete(f.edges, e)
	delete(f.following[follower], followed)
	delete(f.fans[followed], follower)
	return true, nil
}

func (f *Follows) IsFollowing(_ context.Context, follower, followed domain.UserID) (bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.edges[edge{follower, followed}]
	return ok, nil
}

func (f *Follows) Counts(_ context.Context, id domain.UserID) (int64, int64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return int64(len(f.following[id])), int64(len(f.fans[id])), nil
}

func (f *Follows) RemoveUser(_ context.Context, id domain.UserID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for other := range f.following[id] {
		delete(f.edges, edge{id, other})
		delete(f.fans[other], id)
	}
	for other := range f.fans[id] {
		delete(f.edges, edge{other, id})
		delete(f.following[other], id)
	}
	delete(f.following, id)
	delete(f.fans, id)
	return nil
}

func addTo(m map[domain.UserID]map[domain.UserID]struct{}, k, v domain.UserID) {
	set, ok := m[k]
	if !ok {
		set = make(map[domain.UserID]struct{})
		m[k] = set
	}
	set[v] = struct{}{}
}
