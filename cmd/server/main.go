package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	router "github.com/dkeye/LiveRoom/internal/adapters/http"
	"github.com/dkeye/LiveRoom/internal/app/orch"
	"github.com/dkeye/LiveRoom/internal/app/pk"
	"github.com/dkeye/LiveRoom/internal/auth"
	"github.com/dkeye/LiveRoom/internal/config"
	"github.com/dkeye/LiveRoom/internal/core"
	"github.com/dkeye/LiveRoom/internal/store/gormstore"
	"github.com/dkeye/LiveRoom/internal/store/memory"
	"github.com/dkeye/LiveRoom/internal/store/redisrank"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	setup, closeStores, err := buildSetup(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open stores")
	}
	defer closeStores()

	o := orch.New(ctx, setup)
	seedUsers(ctx, o, cfg.Seed)

	authn := auth.NewAuthenticator(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	r := router.SetupRouter(ctx, cfg, o, authn)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("LiveRoom server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server error")
		return
	}
	log.Info().Msg("Server exited gracefully")
}

// buildSetup opens the configured stores. The returned func releases them.
func buildSetup(ctx context.Context, cfg *config.Config) (orch.Setup, func(), error) {
	rate, err := cfg.Wallet.CashRate()
	if err != nil {
		return orch.Setup{}, nil, err
	}
	gifts := cfg.Gifts
	if len(gifts) == 0 {
		gifts = core.DefaultGifts()
	}
	setup := orch.Setup{
		Catalog:        core.NewCatalog(gifts, cfg.Wallet.FanClubGift),
		Levels:         core.DefaultLevels(),
		CashPerEarning: rate,
		PK:             pk.Config{Duration: cfg.PK.Duration, Tick: cfg.PK.Tick},
		OutboxSize:     cfg.Outbox.Size,
		SlowTolerance:  cfg.Server.SlowTolerance,
		RateLimit:      cfg.Rate.Limit,
		RateInterval:   cfg.Rate.Interval,
	}
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.Store.Driver {
	case "", "memory":
		setup.Users = memory.NewUsers()
		setup.Follows = memory.NewFollows()
		setup.Journal = memory.NewJournal()
	case "sqlite", "postgres":
		db, err := gormstore.Open(cfg.Store.Driver, cfg.Store.DSN)
		if err != nil {
			return orch.Setup{}, nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			closers = append(closers, func() { _ = sqlDB.Close() })
		}
		setup.Users = gormstore.NewUsers(db)
		setup.Follows = gormstore.NewFollows(db)
		setup.Journal = gormstore.NewJournal(db)
	default:
		return orch.Setup{}, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	log.Info().Str("module", "main").Str("driver", cfg.Store.Driver).Msg("store ready")

	if cfg.Redis.Enabled {
		rdb, err := redisrank.Dial(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			closeAll()
			return orch.Setup{}, nil, err
		}
		closers = append(closers, func() { _ = rdb.Close() })
		setup.Mirror = redisrank.New(rdb, cfg.Redis.Prefix)
		log.Info().Str("module", "main").Str("addr", cfg.Redis.Address).Msg("contribution mirror enabled")
	}
	return setup, closeAll, nil
}

// seedUsers creates the configured demo accounts that do not exist yet.
func seedUsers(ctx context.Context, o *orch.Orchestrator, seeds []config.SeedUser) {
	if len(seeds) == 0 {
		return
	}
	existing, err := o.Users.List(ctx)
	if err != nil {
		log.Error().Err(err).Str("module", "main").Msg("list users for seeding")
		return
	}
	have := make(map[string]bool, len(existing))
	for _, u := range existing {
		have[u.Username] = true
	}
	for _, s := range seeds {
		if have[s.Username] {
			continue
		}
		u, err := o.RegisterUser(ctx, s.Username, s.Diamonds)
		if err != nil {
			log.Warn().Err(err).Str("module", "main").Str("username", s.Username).Msg("seed user")
			continue
		}
		log.Info().Str("module", "main").Str("user", string(u.ID)).Str("username", u.Username).Msg("seeded demo user")
	}
}
