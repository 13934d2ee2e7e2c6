package app

import (
	"sync"

	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/rs/zerolog/log"
)

const DefaultOutboxSize = 64

// Outbox keeps unacknowledged direct notifications per user. Entries are
// numbered per user and stay until acked or pushed out by newer ones.
type Outbox struct {
	mu      sync.Mutex
	size    int
	next    map[domain.UserID]uint64
	pending map[domain.UserID][]Envelope
}

func NewOutbox(size int) *Outbox {
	if size <= 0 {
		size = DefaultOutboxSize
	}
	return &Outbox{
		size:    size,
		next:    make(map[domain.UserID]uint64),
		pending: make(map[domain.UserID][]Envelope),
	}
}

func (o *Outbox) Push(uid domain.UserID, ev domain.Event) Envelope {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.next[uid]++
	env := Envelope{Type: ev.Kind(), Seq: o.next[uid], Data: ev}
	q := append(o.pending[uid], env)
	if over := len(q) - o.size; over > 0 {
		log.Warn().Str("module", "app.outbox").Str("user", string(uid)).Int("dropped", over).Msg("outbox full, dropping oldest")
		q = append([]Envelope(nil), q[over:]...)
	}
	o.pending[uid] = q
	return env
}

// Ack discards every entry of uid up to and including seq.
func (o *Outbox) Ack(uid domain.UserID, seq uint64) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	q := o.pending[uid]
	i := 0
	for i < len(q) && q[i].Seq <= seq {
		i++
	}
	if i == len(q) {
		delete(o.pending, uid)
	} else {
		o.pending[uid] = append([]Envelope(nil), q[i:]...)
	}
	return i
}

func (o *Outbox) Pending(uid domain.UserID) []Envelope {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Envelope(nil), o.pending[uid]...)
}

func (o *Outbox) Forget(uid domain.UserID) {
	o.mu.Lock()
	delete(o.pending, uid)
	delete(o.next, uid)
	o.mu.Unlock()
}
