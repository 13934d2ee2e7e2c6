package pk

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/LiveRoom/internal/domain"
)

func newManual() *Coordinator {
	return NewCoordinator(context.Background(), Config{Duration: DefaultDuration}, nil)
}

func TestStartSeedsScoresAndRejectsBusyRooms(t *testing.T) {
	c := newManual()
	evs, err := c.Start("r1", "r2", 30, 70)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 2 {
		t.Fatalf("want 2 events, got %d", len(evs))
	}
	started, ok := evs[1].(domain.PKStarted)
	if !ok || started.RoomID != "r2" || started.Side != domain.SideB || started.ScoreA != 30 || started.ScoreB != 70 {
		t.Fatalf("unexpected %+v", evs[1])
	}

	if _, err := c.Start("r2", "r3", 0, 0); !errors.Is(err, domain.ErrBattleActive) {
		t.Fatalf("busy room: %v", err)
	}
	if _, err := c.Start("r3", "r3", 0, 0); !errors.Is(err, domain.ErrSameRoom) {
		t.Fatalf("same room: %v", err)
	}
}

func TestHeartsAndScoresReachBothRooms(t *testing.T) {
	c := newManual()
	_, _ = c.Start("r1", "r2", 0, 0)

	evs, err := c.RecordHeart("r2", domain.SideA)
	if err != nil {
		t.Fatal(err)
	}
	for i, room := range []domain.RoomID{"r1", "r2"} {
		hu := evs[i].(domain.HeartUpdate)
		if hu.RoomID != room || hu.HeartsA != 1 || hu.HeartsB != 0 {
			t.Fatalf("heart event %d: %+v", i, hu)
		}
	}

	evs = c.Attribute("r2", 50)
	su := evs[0].(domain.ScoreUpdate)
	if su.ScoreA != 0 || su.ScoreB != 50 {
		t.Fatalf("score attributed to wrong side: %+v", su)
	}
	if evs := c.Attribute("lonely", 10); evs != nil {
		t.Fatalf("room without battle produced %v", evs)
	}
	if _, err := c.RecordHeart("r1", domain.Side("C")); !errors.Is(err, domain.ErrInvalidSide) {
		t.Fatalf("bad side: %v", err)
	}
}

func TestEndIsIdempotent(t *testing.T) {
	c := newManual()
	_, _ = c.Start("r1", "r2", 10, 5)
	evs := c.End("r2")
	if len(evs) != 2 {
		t.Fatalf("want 2 end events, got %d", len(evs))
	}
	if e := evs[0].(domain.PKEnded); e.Winner != domain.SideA || e.TimedOut {
		t.Fatalf("unexpected %+v", e)
	}
	if evs := c.End("r1"); evs != nil {
		t.Fatalf("second end produced %v", evs)
	}
	if _, ok := c.Get("r1"); ok {
		t.Fatal("battle still visible")
	}
}

func TestBattleTimesOutAfterDurationTicks(t *testing.T) {
	c := newManual()
	_, _ = c.Start("r1", "r2", 0, 0)

	for i := 1; i < DefaultDuration; i++ {
		evs, err := c.Tick("r1")
		if err != nil || evs != nil {
			t.Fatalf("tick %d: evs=%v err=%v", i, evs, err)
		}
	}
	v, _ := c.Get("r2")
	if v.Remaining != 1 {
		t.Fatalf("remaining=%d", v.Remaining)
	}

	evs, err := c.Tick("r2")
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 2 || !evs[0].(domain.PKEnded).TimedOut {
		t.Fatalf("expected timed out end, got %v", evs)
	}

	if _, err := c.RecordHeart("r1", domain.SideA); !errors.Is(err, domain.ErrNoBattle) {
		t.Fatalf("heart after end: %v", err)
	}
	if evs := c.Attribute("r2", 10); evs != nil {
		t.Fatalf("score after end: %v", evs)
	}
	if _, err := c.Tick("r1"); !errors.Is(err, domain.ErrNoBattle) {
		t.Fatalf("tick after end: %v", err)
	}
}

type recorder struct {
	mu  sync.Mutex
	evs []domain.Event
	hit chan struct{}
}

func (r *recorder) emit(evs ...domain.Event) {
	r.mu.Lock()
	r.evs = append(r.evs, evs...)
	r.mu.Unlock()
	r.hit <- struct{}{}
}

func TestTimerEndsBattle(t *testing.T) {
	rec := &recorder{hit: make(chan struct{}, 1)}
	c := NewCoordinator(context.Background(), Config{Duration: 3, Tick: time.Millisecond}, rec.emit)
	_, _ = c.Start("r1", "r2", 0, 0)

	select {
	case <-rec.hit:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never ended the battle")
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.evs) != 2 {
		t.Fatalf("want 2 events, got %d", len(rec.evs))
	}
	if _, ok := c.Get("r1"); ok {
		t.Fatal("battle still active")
	}
}

func TestTimerDoesNotFireAfterEnd(t *testing.T) {
	rec := &recorder{hit: make(chan struct{}, 1)}
	c := NewCoordinator(context.Background(), Config{Duration: 5, Tick: 5 * time.Millisecond}, rec.emit)
	_, _ = c.Start("r1", "r2", 0, 0)
	c.End("r1")

	select {
	case <-rec.hit:
		t.Fatal("orphaned timer fired after end")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestEventBatchesCarryIncreasingSequence(t *testing.T) {
	c := newManual()
	var batches [][]domain.Event
	evs, _ := c.Start("r1", "r2", 0, 0)
	batches = append(batches, evs)
	evs, _ = c.RecordHeart("r1", domain.SideA)
	batches = append(batches, evs)
	batches = append(batches, c.Attribute("r2", 5))
	batches = append(batches, c.End("r1"))

	var last uint64
	for i, batch := range batches {
		seq := batch[0].(domain.Ordered).OrderSeq()
		if seq <= last {
			t.Fatalf("batch %d: seq %d after %d", i, seq, last)
		}
		if other := batch[1].(domain.Ordered).OrderSeq(); other != seq {
			t.Fatalf("batch %d: rooms got %d and %d", i, seq, other)
		}
		last = seq
	}
}
