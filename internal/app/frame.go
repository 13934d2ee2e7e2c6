package app

import (
	"encoding/json"

	"github.com/dkeye/LiveRoom/internal/core"
	"github.com/dkeye/LiveRoom/internal/domain"
)

// Envelope is the wire shape of every pushed event. Seq is set only for
// direct notifications, which the client acknowledges.
type Envelope struct {
	Type domain.EventKind `json:"type"`
	Seq  uint64           `json:"seq,omitempty"`
	Data domain.Event     `json:"data"`
}

func EncodeFrame(env Envelope) (core.Frame, error) {
	return json.Marshal(env)
}
