package core

import (
	"sync"

	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/rs/zerolog/log"
)

// Subscriber receives published events. Implementations are compared by
// identity, so they must be comparable (pointer receivers).
type Subscriber interface {
	Deliver(ev domain.Event)
}

// Bus is the process-wide publish/subscribe hub. Publish is synchronous and
// keeps registration order; there is no replay for late subscribers.
type Bus struct {
	mu   sync.RWMutex
	subs map[domain.EventKind][]Subscriber
}

func NewBus() *Bus {
	return &Bus{subs: make(map[domain.EventKind][]Subscriber)}
}

// Subscribe registers s for kind. It reports false if s was already registered.
func (b *Bus) Subscribe(kind domain.EventKind, s Subscriber) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, cur := range b.subs[kind] {
		if cur == s {
			return false
		}
	}
	b.subs[kind] = append(b.subs[kind], s)
	return true
}

func (b *Bus) Unsubscribe(kind domain.EventKind, s Subscriber) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[kind]
	for i, cur := range list {
		if cur == s {
			next := make([]Subscriber, 0, len(list)-1)
			next = append(next, list[:i]...)
			b.subs[kind] = append(next, list[i+1:]...)
			return true
		}
	}
	return false
}

// Publish invokes every current subscriber of ev.Kind() and returns how many ran.
func (b *Bus) Publish(ev domain.Event) int {
	b.mu.RLock()
	list := b.subs[ev.Kind()]
	b.mu.RUnlock()
	for _, s := range list {
		s.Deliver(ev)
	}
	log.Debug().Str("module", "core.bus").Str("kind", string(ev.Kind())).Str("room", string(ev.Room())).Int("subscribers", len(list)).Msg("published")
	return len(list)
}
