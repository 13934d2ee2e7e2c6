package orch

import (
	"context"
	"sync"
	"testing"

	"github.com/dkeye/LiveRoom/internal/app/pk"
	"github.com/dkeye/LiveRoom/internal/core"
	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/dkeye/LiveRoom/internal/store/memory"
	"github.com/shopspring/decimal"
)

type recorder struct {
	mu  sync.Mutex
	evs []domain.Event
}

func (r *recorder) Deliver(ev domain.Event) {
	r.mu.Lock()
	r.evs = append(r.evs, ev)
	r.mu.Unlock()
}

func (r *recorder) ofKind(kind domain.EventKind) []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Event
	for _, ev := range r.evs {
		if ev.Kind() == kind {
			out = append(out, ev)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.evs = nil
	r.mu.Unlock()
}

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	c.frames = append(c.frames, f)
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) Close() {}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

type harness struct {
	t   *testing.T
	ctx context.Context
	o   *Orchestrator
	rec *recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	users := memory.NewUsers()
	o := New(context.Background(), Setup{
		Users:          users,
		Follows:        memory.NewFollows(),
		Journal:        memory.NewJournal(),
		Catalog:        core.NewCatalog(core.DefaultGifts(), "Fan Club"),
		Levels:         core.DefaultLevels(),
		CashPerEarning: decimal.RequireFromString("0.01"),
		PK:             pk.Config{Duration: pk.DefaultDuration},
		OutboxSize:     16,
		SlowTolerance:  8,
	})

	rec := &recorder{}
	for _, kind := range append(append([]domain.EventKind{}, domain.RoomKinds...), domain.KindKicked, domain.KindJoinDenied) {
		o.Bus.Subscribe(kind, rec)
	}
	return &harness{t: t, ctx: context.Background(), o: o, rec: rec}
}

func (h *harness) user(name string, diamonds int64) domain.UserID {
	h.t.Helper()
	u, err := h.o.RegisterUser(h.ctx, name, diamonds)
	if err != nil {
		h.t.Fatalf("register %s: %v", name, err)
	}
	return u.ID
}

func (h *harness) get(id domain.UserID) *domain.User {
	h.t.Helper()
	u, err := h.o.Users.Get(h.ctx, id)
	if err != nil {
		h.t.Fatal(err)
	}
	return u
}

func (h *harness) stream(host domain.UserID) domain.RoomID {
	h.t.Helper()
	room, err := h.o.StartStream(h.ctx, host, "live")
	if err != nil {
		h.t.Fatal(err)
	}
	return room.Room().ID
}

func (h *harness) join(uid domain.UserID, room domain.RoomID) {
	h.t.Helper()
	if err := h.o.Join(h.ctx, uid, room); err != nil {
		h.t.Fatalf("join: %v", err)
	}
}

func (h *harness) state(room domain.RoomID, fn func(*core.RoomState)) {
	h.t.Helper()
	r, ok := h.o.Rooms.Get(room)
	if !ok {
		h.t.Fatalf("room %s missing", room)
	}
	r.View(fn)
}
