// Package pk runs timed head-to-head battles between two rooms.
package pk

import (
	"context"
	"sync"
	"time"

	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const DefaultDuration = 420

// Emitter delivers events produced outside a caller's request, i.e. when
// the countdown ends a battle.
type Emitter func(evs ...domain.Event)

type Config struct {
	// Duration is the battle length in ticks.
	Duration int
	// Tick is the countdown period. Zero disables the internal timer and
	// leaves ticking to the caller.
	Tick time.Duration
}

type battle struct {
	id        string
	roomA     domain.RoomID
	roomB     domain.RoomID
	heartsA   int64
	heartsB   int64
	scoreA    int64
	scoreB    int64
	remaining int
	startedAt time.Time
	cancel    context.CancelFunc
}

// View is a read-only snapshot of a battle.
type View struct {
	ID        string        `json:"id"`
	RoomA     domain.RoomID `json:"roomA"`
	RoomB     domain.RoomID `json:"roomB"`
	HeartsA   int64         `json:"heartsA"`
	HeartsB   int64         `json:"heartsB"`
	ScoreA    int64         `json:"scoreA"`
	ScoreB    int64         `json:"scoreB"`
	Remaining int           `json:"remaining"`
	StartedAt time.Time     `json:"startedAt"`
}

// Coordinator tracks active battles. Every battle is indexed by both of its
// rooms. Methods return the events to publish; the caller routes each event
// to the room named by ev.Room().
type Coordinator struct {
	mu      sync.Mutex
	battles map[domain.RoomID]*battle
	// seq stamps every event batch, across battles.
	seq     uint64
	cfg     Config
	emit    Emitter
	ctx     context.Context
}

func NewCoordinator(ctx context.Context, cfg Config, emit Emitter) *Coordinator {
	if cfg.Duration <= 0 {
		cfg.Duration = DefaultDuration
	}
	if emit == nil {
		emit = func(...domain.Event) {}
	}
	return &Coordinator{
		battles: make(map[domain.RoomID]*battle),
		cfg:     cfg,
		emit:    emit,
		ctx:     ctx,
	}
}

// Start links a and b. The scores are seeded with each room's contribution
// total so far.
func (c *Coordinator) Start(a, b domain.RoomID, seedA, seedB int64) ([]domain.Event, error) {
	if a == b {
		return nil, domain.ErrSameRoom
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.battles[a]; busy {
		return nil, domain.ErrBattleActive
	}
	if _, busy := c.battles[b]; busy {
		return nil, domain.ErrBattleActive
	}

	bt := &battle{
		id:        uuid.NewString(),
		roomA:     a,
		roomB:     b,
		scoreA:    seedA,
		scoreB:    seedB,
		remaining: c.cfg.Duration,
		startedAt: time.Now().UTC(),
	}
	c.battles[a] = bt
	c.battles[b] = bt
	if c.cfg.Tick > 0 {
		ctx, cancel := context.WithCancel(c.ctx)
		bt.cancel = cancel
		go c.countdown(ctx, bt)
	}
	log.Info().Str("module", "app.pk").Str("battle", bt.id).Str("roomA", string(a)).Str("roomB", string(b)).Msg("battle started")

	c.seq++
	return []domain.Event{
		domain.PKStarted{RoomID: a, OpponentID: b, Side: domain.SideA, Remaining: bt.remaining, ScoreA: bt.scoreA, ScoreB: bt.scoreB, Seq: c.seq},
		domain.PKStarted{RoomID: b, OpponentID: a, Side: domain.SideB, Remaining: bt.remaining, ScoreA: bt.scoreA, ScoreB: bt.scoreB, Seq: c.seq},
	}, nil
}

func (c *Coordinator) countdown(ctx context.Context, bt *battle) {
	ticker := time.NewTicker(c.cfg.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.battles[bt.roomA] != bt {
				c.mu.Unlock()
				return
			}
			evs := c.tickLocked(bt)
			c.mu.Unlock()
			if evs != nil {
				c.emit(evs...)
				return
			}
		}
	}
}

// Tick advances the battle of room by one step. When the countdown reaches
// zero the battle ends and the returned events announce it to both rooms.
func (c *Coordinator) Tick(room domain.RoomID) ([]domain.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bt, ok := c.battles[room]
	if !ok {
		return nil, domain.ErrNoBattle
	}
	return c.tickLocked(bt), nil
}

func (c *Coordinator) tickLocked(bt *battle) []domain.Event {
	if bt.remaining > 0 {
		bt.remaining--
	}
	if bt.remaining > 0 {
		return nil
	}
	log.Info().Str("module", "app.pk").Str("battle", bt.id).Msg("battle timed out")
	return c.endLocked(bt, true)
}

// RecordHeart counts one heart for side in the battle room belongs to.
func (c *Coordinator) RecordHeart(room domain.RoomID, side domain.Side) ([]domain.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bt, ok := c.battles[room]
	if !ok {
		return nil, domain.ErrNoBattle
	}
	switch side {
	case domain.SideA:
		bt.heartsA++
	case domain.SideB:
		bt.heartsB++
	default:
		return nil, domain.ErrInvalidSide
	}
	c.seq++
	return []domain.Event{
		domain.HeartUpdate{RoomID: bt.roomA, HeartsA: bt.heartsA, HeartsB: bt.heartsB, Seq: c.seq},
		domain.HeartUpdate{RoomID: bt.roomB, HeartsA: bt.heartsA, HeartsB: bt.heartsB, Seq: c.seq},
	}, nil
}

// Attribute adds amount to the side room plays on. A room without a battle
// is not an error; nothing happens.
func (c *Coordinator) Attribute(room domain.RoomID, amount int64) []domain.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	bt, ok := c.battles[room]
	if !ok || amount <= 0 {
		return nil
	}
	if room == bt.roomA {
		bt.scoreA += amount
	} else {
		bt.scoreB += amount
	}
	c.seq++
	return []domain.Event{
		domain.ScoreUpdate{RoomID: bt.roomA, ScoreA: bt.scoreA, ScoreB: bt.scoreB, Seq: c.seq},
		domain.ScoreUpdate{RoomID: bt.roomB, ScoreA: bt.scoreA, ScoreB: bt.scoreB, Seq: c.seq},
	}
}

// End stops the battle of room. Ending a room without a battle is a no-op.
func (c *Coordinator) End(room domain.RoomID) []domain.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	bt, ok := c.battles[room]
	if !ok {
		return nil
	}
	return c.endLocked(bt, false)
}

func (c *Coordinator) endLocked(bt *battle, timedOut bool) []domain.Event {
	delete(c.battles, bt.roomA)
	delete(c.battles, bt.roomB)
	if bt.cancel != nil {
		bt.cancel()
	}
	winner := winnerOf(bt)
	c.seq++
	seq := c.seq
	log.Info().Str("module", "app.pk").Str("battle", bt.id).Str("winner", string(winner)).
		Int64("scoreA", bt.scoreA).Int64("scoreB", bt.scoreB).Msg("battle ended")
	ended := func(room domain.RoomID) domain.PKEnded {
		return domain.PKEnded{
			RoomID:   room,
			ScoreA:   bt.scoreA,
			ScoreB:   bt.scoreB,
			HeartsA:  bt.heartsA,
			HeartsB:  bt.heartsB,
			Winner:   winner,
			TimedOut: timedOut,
			Seq:      seq,
		}
	}
	return []domain.Event{ended(bt.roomA), ended(bt.roomB)}
}

// winnerOf compares scores, then hearts. An empty side means a draw.
func winnerOf(bt *battle) domain.Side {
	switch {
	case bt.scoreA > bt.scoreB:
		return domain.SideA
	case bt.scoreB > bt.scoreA:
		return domain.SideB
	case bt.heartsA > bt.heartsB:
		return domain.SideA
	case bt.heartsB > bt.heartsA:
		return domain.SideB
	}
	return ""
}

func (c *Coordinator) Get(room domain.RoomID) (View, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bt, ok := c.battles[room]
	if !ok {
		return View{}, false
	}
	return View{
		ID:        bt.id,
		RoomA:     bt.roomA,
		RoomB:     bt.roomB,
		HeartsA:   bt.heartsA,
		HeartsB:   bt.heartsB,
		ScoreA:    bt.scoreA,
		ScoreB:    bt.scoreB,
		Remaining: bt.remaining,
		StartedAt: bt.startedAt,
	}, true
}

// SideOf reports which side room plays on.
func (c *Coordinator) SideOf(room domain.RoomID) (domain.Side, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bt, ok := c.battles[room]
	if !ok {
		return "", false
	}
	if room == bt.roomA {
		return domain.SideA, true
	}
	return domain.SideB, true
}
