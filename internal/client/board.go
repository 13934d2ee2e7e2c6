package client

import (
	"sync"

	"github.com/dkeye/LiveRoom/internal/domain"
)

// Board is the client-side copy of one room's contribution ledger and battle
// score. Gift commands add to it before the server answers; room events
// from the server replace it.
type Board struct {
	mu      sync.Mutex
	room    domain.RoomID
	contrib map[domain.UserID]int64
	battle  bool
	side    domain.Side
	scoreA  int64
	scoreB  int64
	lastSeq uint64
}

func NewBoard(room domain.RoomID) *Board {
	return &Board{room: room, contrib: make(map[domain.UserID]int64)}
}

func (b *Board) Contribution(uid domain.UserID) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.contrib[uid]
}

// Score returns the battle score. ok is false when no battle runs.
func (b *Board) Score() (scoreA, scoreB int64, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.scoreA, b.scoreB, b.battle
}

// Observe applies a server event for this room.
func (b *Board) Observe(ev domain.Event) {
	if ev.Room() != b.room {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if o, ok := ev.(domain.Ordered); ok {
		if o.OrderSeq() <= b.lastSeq {
			return
		}
		b.lastSeq = o.OrderSeq()
	}
	switch e := ev.(type) {
	case domain.OnlineUsersUpdated:
		b.contrib = make(map[domain.UserID]int64, len(e.Ranked))
		for _, r := range e.Ranked {
			b.contrib[r.UserID] = r.Value
		}
	case domain.PKStarted:
		b.battle, b.side = true, e.Side
		b.scoreA, b.scoreB = e.ScoreA, e.ScoreB
	case domain.ScoreUpdate:
		b.scoreA, b.scoreB = e.ScoreA, e.ScoreB
	case domain.PKEnded:
		b.battle = false
		b.scoreA, b.scoreB = e.ScoreA, e.ScoreB
	}
}

// add credits uid and, during a battle, the room's side. It reports whether
// the score was touched.
func (b *Board) add(uid domain.UserID, total int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.contrib[uid] += total
	if !b.battle {
		return false
	}
	if b.side == domain.SideA {
		b.scoreA += total
	} else {
		b.scoreB += total
	}
	return true
}

// remove is the exact inverse of add, including the battle leg it took.
func (b *Board) remove(uid domain.UserID, total int64, scored bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.contrib[uid] -= total
	if b.contrib[uid] == 0 {
		delete(b.contrib, uid)
	}
	if !scored {
		return
	}
	if b.side == domain.SideA {
		b.scoreA -= total
	} else {
		b.scoreB -= total
	}
}
