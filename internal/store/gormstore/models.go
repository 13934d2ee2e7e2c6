package gormstore

import (
	"time"

	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/shopspring/decimal"
)

type userRow struct {
	ID            string              `gorm:"primaryKey;size:36"`
	Username      string              `gorm:"size:64;not null"`
	Diamonds      int64               `gorm:"not null;default:0"`
	Earnings      int64               `gorm:"not null;default:0"`
	TotalSent     int64               `gorm:"not null;default:0"`
	TotalReceived int64               `gorm:"not null;default:0"`
	Level         int                 `gorm:"not null;default:1"`
	XP            int64               `gorm:"not null;default:0"`
	FanClubHost   *string             `gorm:"size:36"`
	FanClubLevel  int                 `gorm:"not null;default:0"`
	Frames        []domain.OwnedFrame `gorm:"serializer:json"`
	Version       int64               `gorm:"not null;default:1"`
}

func (userRow) TableName() string { return "users" }

type followRow struct {
	ID        uint      `gorm:"primaryKey"`
	Follower  string    `gorm:"size:36;not null;uniqueIndex:idx_follow_pair;index"`
	Followed  string    `gorm:"size:36;not null;uniqueIndex:idx_follow_pair;index"`
	CreatedAt time.Time
}

func (followRow) TableName() string { return "follows" }

type recordRow struct {
	ID           string          `gorm:"primaryKey;size:36"`
	UserID       string          `gorm:"size:36;not null;index"`
	Kind         string          `gorm:"size:32;not null"`
	Diamonds     int64           `gorm:"not null;default:0"`
	Earnings     int64           `gorm:"not null;default:0"`
	Cash         decimal.Decimal `gorm:"type:decimal(20,2)"`
	RoomID       string          `gorm:"size:36"`
	Counterparty string          `gorm:"size:36"`
	Gift         string          `gorm:"size:64"`
	Quantity     int64
	CreatedAt    time.Time `gorm:"index"`
}

func (recordRow) TableName() string { return "purchase_records" }

func toUserRow(u *domain.User) userRow {
	row := userRow{
		ID:            string(u.ID),
		Username:      u.Username,
		Diamonds:      u.Diamonds,
		Earnings:      u.Earnings,
		TotalSent:     u.TotalSent,
		TotalReceived: u.TotalReceived,
		Level:         u.Level,
		XP:            u.XP,
		Frames:        u.Frames,
		Version:       u.Version,
	}
	if u.FanClub != nil {
		host := string(u.FanClub.HostID)
		row.FanClubHost = &host
		row.FanClubLevel = u.FanClub.Level
	}
	return row
}

func (r userRow) toDomain() *domain.User {
	u := &domain.User{
		ID:            domain.UserID(r.ID),
		Username:      r.Username,
		Diamonds:      r.Diamonds,
		Earnings:      r.Earnings,
		TotalSent:     r.TotalSent,
		TotalReceived: r.TotalReceived,
		Level:         r.Level,
		XP:            r.XP,
		Frames:        r.Frames,
		Version:       r.Version,
	}
	if r.FanClubHost != nil {
		u.FanClub = &domain.FanClub{HostID: domain.UserID(*r.FanClubHost), Level: r.FanClubLevel}
	}
	return u
}

func toRecordRow(p domain.PurchaseRecord) recordRow {
	return recordRow{
		ID:           p.ID,
		UserID:       string(p.UserID),
		Kind:         string(p.Kind),
		Diamonds:     p.Diamonds,
		Earnings:     p.Earnings,
		Cash:         p.Cash,
		RoomID:       string(p.RoomID),
		Counterparty: string(p.Counterparty),
		Gift:         p.Gift,
		Quantity:     p.Quantity,
		CreatedAt:    p.CreatedAt,
	}
}

func (r recordRow) toDomain() domain.PurchaseRecord {
	return domain.PurchaseRecord{
		ID:           r.ID,
		UserID:       domain.UserID(r.UserID),
		Kind:         domain.RecordKind(r.Kind),
		Diamonds:     r.Diamonds,
		Earnings:     r.Earnings,
		Cash:         r.Cash,
		RoomID:       domain.RoomID(r.RoomID),
		Counterparty: domain.UserID(r.Counterparty),
		Gift:         r.Gift,
		Quantity:     r.Quantity,
		CreatedAt:    r.CreatedAt,
	}
}
