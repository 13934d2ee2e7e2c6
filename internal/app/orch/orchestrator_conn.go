package orch

import (
	"context"

	"github.com/dkeye/LiveRoom/internal/core"
	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/rs/zerolog/log"
)

// Connect binds a push connection and replays unacked notifications.
func (o *Orchestrator) Connect(uid domain.UserID, conn core.SignalConnection, cancel context.CancelFunc) {
	o.Registry.Bind(uid, conn, cancel)
	if n := o.Fanout.Redeliver(uid); n > 0 {
		log.Info().Str("module", "orch.conn").Str("user", string(uid)).Int("count", n).Msg("redelivered notifications")
	}
}

// Disconnect unbinds conn and takes its user out of the room it followed.
func (o *Orchestrator) Disconnect(uid domain.UserID, conn core.SignalConnection) {
	roomID, ok := o.Registry.Unbind(uid, conn)
	if !ok || roomID == "" {
		return
	}
	if err := o.Leave(uid, roomID); err != nil {
		log.Debug().Err(err).Str("module", "orch.conn").Str("user", string(uid)).Msg("leave on disconnect")
	}
}

func (o *Orchestrator) Ack(uid domain.UserID, seq uint64) {
	o.Outbox.Ack(uid, seq)
}
