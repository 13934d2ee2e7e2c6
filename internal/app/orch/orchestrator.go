package orch

import (
	"context"
	"time"

	"github.com/dkeye/LiveRoom/internal/app"
	"github.com/dkeye/LiveRoom/internal/app/pk"
	"github.com/dkeye/LiveRoom/internal/core"
	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/rs/zerolog/log"
)

// Orchestrator runs every use case that spans rooms, users and connections.
// Room mutations go through RoomService.Commit; store and journal I/O is
// done outside the room lock.
type Orchestrator struct {
	Bus      *core.Bus
	Registry *app.Registry
	Rooms    core.RoomManager
	Fanout   *app.Fanout
	Outbox   *app.Outbox

	Users   core.UserRepository
	Follows core.FollowRepository
	Wallet  *core.Wallet
	Catalog *core.Catalog
	PK      *pk.Coordinator
	// Mirror is optional.
	Mirror core.RankMirror

	Hearts *app.RoomRateLimiter
	Chat   *app.RoomRateLimiter
}

var timeNow = func() time.Time { return time.Now().UTC() }

// Route publishes each event through the sequencer of the room it names.
// Events for rooms that no longer exist are dropped.
func (o *Orchestrator) Route(evs ...domain.Event) {
	for _, ev := range evs {
		room, ok := o.Rooms.Get(ev.Room())
		if !ok {
			log.Debug().Str("module", "orch").Str("room", string(ev.Room())).Str("kind", string(ev.Kind())).Msg("drop event for gone room")
			continue
		}
		room.Emit(ev)
	}
}

// splitByRoom separates events addressed to room from the rest.
func splitByRoom(room domain.RoomID, evs []domain.Event) (local, remote []domain.Event) {
	for _, ev := range evs {
		if ev.Room() == room {
			local = append(local, ev)
		} else {
			remote = append(remote, ev)
		}
	}
	return local, remote
}

// detached keeps request values but survives the request's cancellation, for
// side effects that must run once the economic mutation is committed.
func detached(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

func (o *Orchestrator) room(id domain.RoomID) (core.RoomService, error) {
	room, ok := o.Rooms.Get(id)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}
