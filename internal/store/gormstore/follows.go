package gormstore

import (
	"context"
	"fmt"

	"github.com/dkeye/LiveRoom/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Follows stores one row per directed edge; the pair is unique.
type Follows struct {
	db *gorm.DB
}

func NewFollows(db *gorm.DB) *Follows { return &Follows{db: db} }

func (f *Follows) Follow(ctx context.Context, follower, followed domain.UserID) (bool, error) {
	if follower == followed {
		return false, domain.ErrSelfFollow
	}
	row := followRow{Follower: string(follower), Followed: string(followed)}
	res := f.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return false, fmt.Errorf("follow: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (f *Follows) Unfollow(ctx context.Context, follower, followed domain.UserID) (bool, error) {
	res := f.db.WithContext(ctx).
		Where("follower = ? AND followed = ?", string(follower), string(followed)).
		Delete(&followRow{})
	if res.Error != nil {
		return false, fmt.Errorf("unfollow: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (f *Follows) IsFollowing(ctx context.Context, follower, followed domain.UserID) (bool, error) {
	var n int64
	err := f.db.WithContext(ctx).Model(&followRow{}).
		Where("follower = ? AND followed = ?", string(follower), string(followed)).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("is following: %w", err)
	}
	return n > 0, nil
}

func (f *Follows) Counts(ctx context.Context, id domain.UserID) (int64, int64, error) {
	var following, fans int64
	db := f.db.WithContext(ctx)
	if err := db.Model(&followRow{}).Where("follower = ?", string(id)).Count(&following).Error; err != nil {
		return 0, 0, fmt.Errorf("count following: %w", err)
	}
	if err := db.Model(&followRow{}).Where("followed = ?", string(id)).Count(&fans).Error; err != nil {
		return 0, 0, fmt.Errorf("count fans: %w", err)
	}
	return following, fans, nil
}

func (f *Follows) RemoveUser(ctx context.Context, id domain.UserID) error {
	err := f.db.WithContext(ctx).
		Where("follower = ? OR followed = ?", string(id), string(id)).
		Delete(&followRow{}).Error
	if err != nil {
		return fmt.Errorf("remove follows: %w", err)
	}
	return nil
}
