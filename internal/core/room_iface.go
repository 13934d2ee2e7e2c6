package core

import (
	"time"

	"github.com/dkeye/LiveRoom/internal/domain"
)

// RoomService is the core-facing API of a room.
// It owns the room state but never touches transport resources.
type RoomService interface {
	Room() domain.Room
	MemberCount() int
	// Closed reports whether the room has been torn down.
	Closed() bool

	// Commit mutates state under the room lock and publishes the returned
	// events in commit order after the lock is released.
	Commit(fn func(*RoomState) ([]domain.Event, error)) error
	View(fn func(*RoomState))
	// Emit publishes events in this room's commit order without mutating state.
	Emit(evs ...domain.Event)
}

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	HostID      domain.UserID `json:"hostId"`
	Title       string        `json:"title"`
	StartedAt   time.Time     `json:"startedAt"`
	MemberCount int           `json:"memberCount"`
}

type RoomManager interface {
	Create(host domain.UserID, title string) RoomService
	Get(id domain.RoomID) (RoomService, bool)
	List() []RoomInfo
	StopRoom(id domain.RoomID)
}
