package signal

import (
	"context"

	"github.com/dkeye/LiveRoom/internal/app/orch"
	"github.com/dkeye/LiveRoom/internal/domain"
)

func (ctl *Controller) handleWhoAmI(ctx context.Context, uid domain.UserID, conn *WsSignalConn) {
	p, err := ctl.Orch.Profile(ctx, uid, uid)
	if err != nil {
		ctl.replyErr(conn, uid, "whoami", err)
		return
	}
	resp := struct {
		Type string        `json:"type"`
		User *orch.Profile `json:"user"`
		Room domain.RoomID `json:"room,omitempty"`
	}{
		Type: "whoami",
		User: p,
	}
	if roomID, ok := ctl.Orch.Registry.RoomOf(uid); ok {
		resp.Room = roomID
	}
	ctl.sendJSON(conn, resp)
}
