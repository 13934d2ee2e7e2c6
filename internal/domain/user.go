// Package domain contains entity without logic, just meta-data
package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MaxUserIDLen   = 36
	MaxUsernameLen = 36
)

type UserID string

// FanClub is a viewer's membership in one streamer's fan club.
type FanClub struct {
	HostID UserID `json:"hostId"`
	Level  int    `json:"level"`
}

// OwnedFrame is a cosmetic avatar frame with an expiry.
type OwnedFrame struct {
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type User struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`

	Diamonds      int64 `json:"diamonds"`
	Earnings      int64 `json:"earnings"`
	TotalSent     int64 `json:"totalSent"`
	TotalReceived int64 `json:"totalReceived"`
	Level         int   `json:"level"`
	XP            int64 `json:"xp"`

	FanClub *FanClub     `json:"fanClub,omitempty"`
	Frames  []OwnedFrame `json:"frames,omitempty"`

	// Version is bumped on every persisted mutation.
	Version int64 `json:"-"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewUser(username string) (*User, error) {
	u := &User{ID: UserID(uuid.NewString()), Level: 1}
	if err := u.SetUsername(username); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) SetUsername(username string) error {
	if len(username) == 0 {
		return ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	u.Username = username
	return nil
}

// IsFanOf reports whether u already holds a fan-club membership for host.
func (u *User) IsFanOf(host UserID) bool {
	return u.FanClub != nil && u.FanClub.HostID == host
}

// ActiveFrames drops frames that expired before now.
func (u *User) ActiveFrames(now time.Time) []OwnedFrame {
	out := make([]OwnedFrame, 0, len(u.Frames))
	for _, f := range u.Frames {
		if f.ExpiresAt.After(now) {
			out = append(out, f)
		}
	}
	return out
}

// Clone returns a deep copy safe to mutate outside a store.
func (u *User) Clone() *User {
	c := *u
	if u.FanClub != nil {
		fc := *u.FanClub
		c.FanClub = &fc
	}
	if u.Frames != nil {
		c.Frames = append([]OwnedFrame(nil), u.Frames...)
	}
	return &c
}
