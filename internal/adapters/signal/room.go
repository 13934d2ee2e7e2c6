package signal

import (
	"context"
	"encoding/json"

	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/rs/zerolog/log"
)

// currentRoom is the room the connection follows, or the explicit one.
func (ctl *Controller) currentRoom(uid domain.UserID, explicit string) (domain.RoomID, bool) {
	if explicit != "" {
		return domain.RoomID(explicit), true
	}
	return ctl.Orch.Registry.RoomOf(uid)
}

func (ctl *Controller) handleJoin(ctx context.Context, uid domain.UserID, conn *WsSignalConn, data []byte) {
	var p struct {
		Room string `json:"room"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" {
		log.Warn().Str("module", "signal").Str("user", string(uid)).Msg("bad join payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	roomID := domain.RoomID(p.Room)

	log.Info().Str("module", "signal").Str("user", string(uid)).Str("room", p.Room).Msg("join")
	if err := ctl.Orch.Join(ctx, uid, roomID); err != nil {
		ctl.replyErr(conn, uid, "join", err)
		return
	}
	ranked, err := ctl.Orch.OnlineUsers(ctx, roomID)
	if err != nil {
		ctl.replyErr(conn, uid, "join", err)
		return
	}
	resp := struct {
		Type   string              `json:"type"`
		Room   domain.RoomID       `json:"room"`
		Online []domain.RankedUser `json:"online"`
	}{
		Type:   "room_state",
		Room:   roomID,
		Online: ranked,
	}
	ctl.sendJSON(conn, resp)
}

// handleLeave exits the followed room; the connection stays open.
func (ctl *Controller) handleLeave(uid domain.UserID, conn *WsSignalConn) {
	roomID, ok := ctl.Orch.Registry.RoomOf(uid)
	if !ok {
		ctl.sendError(conn, domain.ErrNotInRoom.Error())
		return
	}
	log.Info().Str("module", "signal").Str("user", string(uid)).Str("room", string(roomID)).Msg("leave")
	if err := ctl.Orch.Leave(uid, roomID); err != nil {
		ctl.replyErr(conn, uid, "leave", err)
		return
	}
	ctl.sendJSON(conn, map[string]any{"type": "left", "room": roomID})
}

func (ctl *Controller) handleHeart(uid domain.UserID, conn *WsSignalConn, data []byte) {
	var p struct {
		Room string `json:"room"`
		Team string `json:"team"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(conn, "bad_payload")
		return
	}
	roomID, ok := ctl.currentRoom(uid, p.Room)
	if !ok {
		ctl.sendError(conn, domain.ErrNotInRoom.Error())
		return
	}
	if err := ctl.Orch.Heart(uid, roomID, p.Team); err != nil {
		ctl.replyErr(conn, uid, "heart", err)
	}
}

func (ctl *Controller) handleChat(uid domain.UserID, conn *WsSignalConn, data []byte) {
	var p struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(conn, "bad_payload")
		return
	}
	roomID, ok := ctl.Orch.Registry.RoomOf(uid)
	if !ok {
		ctl.sendError(conn, domain.ErrNotInRoom.Error())
		return
	}
	if err := ctl.Orch.SendChat(uid, roomID, p.Text); err != nil {
		ctl.replyErr(conn, uid, "chat", err)
	}
}
