package core

import (
	"context"

	"github.com/dkeye/LiveRoom/internal/domain"
)

// UserRepository is the persistence boundary for users.
// Get and List hand out copies; mutations go through Update.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, id domain.UserID) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Delete(ctx context.Context, id domain.UserID) error
	// Update loads ids, applies fn and persists all of them or none.
	// A lost race is reported as domain.ErrConcurrencyConflict.
	Update(ctx context.Context, ids []domain.UserID, fn func(map[domain.UserID]*domain.User) error) (map[domain.UserID]*domain.User, error)
}

// FollowRepository owns the follower->followed relation. Counters are always
// derived from it, never stored.
type FollowRepository interface {
	Follow(ctx context.Context, follower, followed domain.UserID) (bool, error)
	Unfollow(ctx context.Context, follower, followed domain.UserID) (bool, error)
	IsFollowing(ctx context.Context, follower, followed domain.UserID) (bool, error)
	Counts(ctx context.Context, id domain.UserID) (following, fans int64, err error)
	RemoveUser(ctx context.Context, id domain.UserID) error
}

// Journal is the append-only audit log of economic mutations.
type Journal interface {
	Append(ctx context.Context, recs ...domain.PurchaseRecord) error
	ListByUser(ctx context.Context, id domain.UserID, limit int) ([]domain.PurchaseRecord, error)
}

// RankMirror copies per-room contribution totals to an external cache.
type RankMirror interface {
	Incr(ctx context.Context, room domain.RoomID, user domain.UserID, amount int64) error
	Clear(ctx context.Context, room domain.RoomID) error
}
