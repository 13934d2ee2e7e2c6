package http

import (
	"context"
	"time"

	"github.com/dkeye/LiveRoom/internal/adapters/signal"
	"github.com/dkeye/LiveRoom/internal/app/orch"
	"github.com/dkeye/LiveRoom/internal/auth"
	"github.com/dkeye/LiveRoom/internal/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type api struct {
	o     *orch.Orchestrator
	authn *auth.Authenticator
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, authn *auth.Authenticator) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Server.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))

	store := cookie.NewStore([]byte(cfg.Auth.Secret))
	r.Use(sessions.Sessions("LiveRoomSessions", store))

	log.Info().Str("module", "adapters.http").Strs("origins", cfg.Server.AllowedOrigins).Msg("router setup")

	h := &api{o: o, authn: authn}
	ws := signal.NewController(o, signal.Options{
		ReadLimit:  cfg.Server.ReadLimit,
		PingPeriod: cfg.Server.PingPeriod,
		SendBuffer: cfg.Server.SendBuffer,
	})

	pub := r.Group("/api")
	pub.POST("/auth/token", h.issueToken)
	pub.GET("/users", h.listUsers)
	pub.POST("/users", h.createUser)
	pub.GET("/gifts", h.listGifts)
	pub.GET("/streams", h.listStreams)
	pub.GET("/streams/:roomId/online-users", h.onlineUsers)
	pub.GET("/streams/:roomId/gifts", h.roomGifts)
	pub.GET("/pk/:roomId", h.pkView)

	priv := r.Group("/api", authn.Middleware())
	priv.GET("/users/:id", h.getUser)
	priv.DELETE("/users/:id", h.deleteUser)
	priv.POST("/users/:id/toggle-follow", h.toggleFollow)
	priv.POST("/users/:id/recharge", h.recharge)
	priv.POST("/users/:id/withdraw", h.withdraw)
	priv.GET("/users/:id/transactions", h.transactions)

	priv.POST("/streams", h.startStream)
	priv.DELETE("/streams/:roomId", h.endStream)
	priv.POST("/streams/:roomId/join", h.joinStream)
	priv.POST("/streams/:roomId/leave", h.leaveStream)
	priv.POST("/streams/:roomId/kick", h.kick)
	priv.POST("/streams/:roomId/moderators", h.promote)
	priv.POST("/streams/:roomId/gift", h.sendGift)
	priv.POST("/streams/:roomId/chat", h.chat)
	priv.GET("/streams/:roomId/history", h.giftHistory)

	priv.POST("/pk/start", h.startPK)
	priv.POST("/pk/end", h.endPK)
	priv.POST("/pk/heart", h.heart)

	priv.GET("/ws", func(c *gin.Context) {
		uid, _ := auth.GetUserID(c)
		log.Info().Str("module", "adapters.http").Str("user", string(uid)).Msg("ws endpoint hit")
		ws.Handle(ctx, c)
	})

	return r
}

func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	for _, o := range origins {
		if o == "*" {
			cc.AllowOriginFunc = func(string) bool { return true }
			return cc
		}
	}
	cc.AllowOrigins = origins
	return cc
}
