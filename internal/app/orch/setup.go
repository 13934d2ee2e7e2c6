package orch

import (
	"context"
	"time"

	"github.com/dkeye/LiveRoom/internal/app"
	"github.com/dkeye/LiveRoom/internal/app/pk"
	"github.com/dkeye/LiveRoom/internal/core"
	"github.com/shopspring/decimal"
)

// Setup lists the stores and knobs an Orchestrator is assembled from.
// Mirror may be nil.
type Setup struct {
	Users   core.UserRepository
	Follows core.FollowRepository
	Journal core.Journal
	Mirror  core.RankMirror

	Catalog        *core.Catalog
	Levels         core.LevelTable
	CashPerEarning decimal.Decimal

	PK            pk.Config
	OutboxSize    int
	SlowTolerance int
	RateLimit     int
	RateInterval  time.Duration
}

// New wires the bus, rooms, push fan-out and battle coordinator around the
// given stores. ctx bounds the battle ticker.
func New(ctx context.Context, s Setup) *Orchestrator {
	bus := core.NewBus()
	reg := app.NewRegistry()
	box := app.NewOutbox(s.OutboxSize)
	fan := app.NewFanout(reg, box, app.NewSimplePolicy(s.SlowTolerance))
	fan.Attach(bus)

	o := &Orchestrator{
		Bus:      bus,
		Registry: reg,
		Rooms:    core.NewRoomManager(bus),
		Fanout:   fan,
		Outbox:   box,
		Users:    s.Users,
		Follows:  s.Follows,
		Wallet: &core.Wallet{
			Users:          s.Users,
			Journal:        s.Journal,
			Levels:         s.Levels,
			CashPerEarning: s.CashPerEarning,
		},
		Catalog: s.Catalog,
		Mirror:  s.Mirror,
		Hearts:  app.NewRoomRateLimiter(s.RateLimit, s.RateInterval),
		Chat:    app.NewRoomRateLimiter(s.RateLimit, s.RateInterval),
	}
	o.PK = pk.NewCoordinator(ctx, s.PK, o.Route)
	return o
}
