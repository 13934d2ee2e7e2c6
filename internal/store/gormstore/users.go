package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/LiveRoom/internal/domain"
	"gorm.io/gorm"
)

var userColumns = []string{
	"username", "diamonds", "earnings", "total_sent", "total_received",
	"level", "xp", "fan_club_host", "fan_club_level", "frames", "version",
}

// Users is a UserRepository with optimistic locking on the version column.
type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users { return &Users{db: db} }

func (s *Users) Create(ctx context.Context, u *domain.User) error {
	row := toUserRow(u)
	row.Version = 1
	var n int64
	if err := s.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", row.ID).Count(&n).Error; err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if n > 0 {
		return domain.ErrUserExists
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Users) Get(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).Where("id = ?", string(id)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Users) List(ctx context.Context) ([]*domain.User, error) {
	var rows []userRow
	if err := s.db.WithContext(ctx).Order("username").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]*domain.User, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (s *Users) Delete(ctx context.Context, id domain.UserID) error {
	res := s.db.WithContext(ctx).Where("id = ?", string(id)).Delete(&userRow{})
	if res.Error != nil {
		return fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Update loads ids in one transaction, applies fn and writes each row back
// only if its version is unchanged.
func (s *Users) Update(ctx context.Context, ids []domain.UserID, fn func(map[domain.UserID]*domain.User) error) (map[domain.UserID]*domain.User, error) {
	out := make(map[domain.UserID]*domain.User, len(ids))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		keys := make([]string, 0, len(ids))
		seen := make(map[domain.UserID]struct{}, len(ids))
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			keys = append(keys, string(id))
		}

		var rows []userRow
		if err := tx.Where("id IN ?", keys).Find(&rows).Error; err != nil {
			return fmt.Errorf("load users: %w", err)
		}
		if len(rows) != len(keys) {
			return domain.ErrUserNotFound
		}

		work := make(map[domain.UserID]*domain.User, len(rows))
		versions := make(map[domain.UserID]int64, len(rows))
		for _, r := range rows {
			u := r.toDomain()
			work[u.ID] = u
			versions[u.ID] = u.Version
		}
		if err := fn(work); err != nil {
			return err
		}

		for id, u := range work {
			u.Version = versions[id] + 1
			row := toUserRow(u)
			res := tx.Model(&userRow{}).
				Where("id = ? AND version = ?", string(id), versions[id]).
				Select(userColumns).
				Updates(&row)
			if res.Error != nil {
				return fmt.Errorf("save user: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return domain.ErrConcurrencyConflict
			}
			out[id] = u
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
