package app

import (
	"sync"

	"github.com/dkeye/LiveRoom/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	MarkSlow
	KickMember
	DropFrame
)

type Policy interface {
	OnBackPressure(room domain.RoomID, uid domain.UserID) BackpressureAction
	// OnDelivered resets whatever the policy tracks for a consumer that keeps up.
	OnDelivered(uid domain.UserID)
}

// SimplePolicy drops frames for a slow consumer and disconnects it after
// Tolerance consecutive drops. Tolerance 0 disconnects on the first drop.
type SimplePolicy struct {
	Tolerance int

	mu    sync.Mutex
	drops map[domain.UserID]int
}

func NewSimplePolicy(tolerance int) *SimplePolicy {
	return &SimplePolicy{Tolerance: tolerance, drops: make(map[domain.UserID]int)}
}

func (p *SimplePolicy) OnBackPressure(_ domain.RoomID, uid domain.UserID) BackpressureAction {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.drops[uid]++
	if p.drops[uid] > p.Tolerance {
		delete(p.drops, uid)
		return KickMember
	}
	return DropFrame
}

func (p *SimplePolicy) OnDelivered(uid domain.UserID) {
	p.mu.Lock()
	if _, ok := p.drops[uid]; ok {
		delete(p.drops, uid)
	}
	p.mu.Unlock()
}
