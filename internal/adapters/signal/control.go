package signal

import (
	"encoding/json"

	"github.com/dkeye/LiveRoom/internal/domain"
)

func (ctl *Controller) handlePing(conn *WsSignalConn) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	ctl.sendJSON(conn, resp)
}

// handleAck drops every queued notification up to seq.
func (ctl *Controller) handleAck(uid domain.UserID, conn *WsSignalConn, data []byte) {
	var p struct {
		Seq uint64 `json:"seq"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Seq == 0 {
		ctl.sendError(conn, "bad_payload")
		return
	}
	ctl.Orch.Ack(uid, p.Seq)
}
