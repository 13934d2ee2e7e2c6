package app

import (
	"context"
	"sync"

	"github.com/dkeye/LiveRoom/internal/core"
	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/rs/zerolog/log"
)

type connEntry struct {
	RoomID domain.RoomID
	Conn   core.SignalConnection
	Cancel context.CancelFunc
}

// Registry maps users to their live push connection and the room that
// connection currently follows. One connection per user; a new one replaces
// the old and keeps following the old one's room.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.UserID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.UserID]*connEntry)}
}

func (r *Registry) Bind(uid domain.UserID, conn core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	prev := r.conns[uid]
	e := &connEntry{Conn: conn, Cancel: cancel}
	if prev != nil {
		e.RoomID = prev.RoomID
	}
	r.conns[uid] = e
	r.mu.Unlock()
	if prev != nil && prev.Cancel != nil {
		prev.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("user", string(uid)).Bool("replaced", prev != nil).Msg("bound connection")
}

// Unbind drops uid only if conn is still the bound connection.
func (r *Registry) Unbind(uid domain.UserID, conn core.SignalConnection) (domain.RoomID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[uid]
	if !ok || e.Conn != conn {
		return "", false
	}
	delete(r.conns, uid)
	log.Info().Str("module", "app.registry").Str("user", string(uid)).Msg("unbound connection")
	return e.RoomID, true
}

func (r *Registry) Conn(uid domain.UserID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[uid]; ok {
		return e.Conn, true
	}
	return nil, false
}

func (r *Registry) RoomOf(uid domain.UserID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[uid]
	if !ok || e.RoomID == "" {
		return "", false
	}
	return e.RoomID, true
}

// UpdateRoom points uid's connection at room. It reports false if uid has no
// connection.
func (r *Registry) UpdateRoom(uid domain.UserID, room domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[uid]
	if !ok {
		return false
	}
	e.RoomID = room
	return true
}

// RemoveRoom detaches uid from room. A connection that has moved on is left alone.
func (r *Registry) RemoveRoom(uid domain.UserID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[uid]; ok && e.RoomID == room {
		e.RoomID = ""
	}
}

type regSnap struct {
	UserID domain.UserID
	Conn   core.SignalConnection
}

func (r *Registry) MembersOfRoom(room domain.RoomID) []regSnap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]regSnap, 0, len(r.conns))
	for uid, e := range r.conns {
		if e.RoomID == room {
			out = append(out, regSnap{UserID: uid, Conn: e.Conn})
		}
	}
	return out
}

func (r *Registry) Cancel(uid domain.UserID) bool {
	r.mu.RLock()
	e, ok := r.conns[uid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("user", string(uid)).Msg("canceled connection")
	return true
}
