package core

import (
	"sync"
	"testing"

	"github.com/dkeye/LiveRoom/internal/domain"
)

type sink struct {
	name string
	log  *[]string
}

func (s *sink) Deliver(domain.Event) { *s.log = append(*s.log, s.name) }

func TestBusDedupAndOrder(t *testing.T) {
	var calls []string
	b := NewBus()
	first := &sink{"first", &calls}
	second := &sink{"second", &calls}

	if !b.Subscribe(domain.KindChat, first) || !b.Subscribe(domain.KindChat, second) {
		t.Fatal("subscribe failed")
	}
	if b.Subscribe(domain.KindChat, first) {
		t.Fatal("duplicate subscription accepted")
	}
	if n := b.Publish(domain.ChatMessage{RoomID: "r"}); n != 2 {
		t.Fatalf("delivered to %d", n)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Fatalf("order %v", calls)
	}

	b.Unsubscribe(domain.KindChat, first)
	calls = calls[:0]
	b.Publish(domain.ChatMessage{RoomID: "r"})
	if len(calls) != 1 || calls[0] != "second" {
		t.Fatalf("after unsubscribe %v", calls)
	}
	if n := b.Publish(domain.GiftSent{RoomID: "r"}); n != 0 {
		t.Fatalf("no subscribers but delivered to %d", n)
	}
}

func TestSequencerPublishesInCommitOrder(t *testing.T) {
	var seq Sequencer
	var mu sync.Mutex
	var state, seen []uint64
	var next uint64

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = seq.Commit(func() ([]domain.Event, error) {
				next++
				state = append(state, next)
				return []domain.Event{domain.GiftSent{Seq: next}}, nil
			}, func(ev domain.Event) {
				mu.Lock()
				seen = append(seen, ev.(domain.GiftSent).Seq)
				mu.Unlock()
			})
		}()
	}
	wg.Wait()
	if len(seen) != 200 {
		t.Fatalf("published %d", len(seen))
	}
	for i := range seen {
		if seen[i] != state[i] {
			t.Fatalf("event %d published as %d", state[i], seen[i])
		}
	}
}
