package app

import (
	"github.com/dkeye/LiveRoom/internal/core"
	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/rs/zerolog/log"
)

// Fanout turns bus events into frames on live connections. Room events go
// to every connection following the room and are best effort. Direct
// notifications go through the Outbox and are redelivered until acked.
type Fanout struct {
	Registry *Registry
	Outbox   *Outbox
	Policy   Policy
}

func NewFanout(reg *Registry, outbox *Outbox, policy Policy) *Fanout {
	return &Fanout{Registry: reg, Outbox: outbox, Policy: policy}
}

// Attach subscribes f to every event kind on bus.
func (f *Fanout) Attach(bus *core.Bus) {
	for _, kind := range domain.RoomKinds {
		bus.Subscribe(kind, f)
	}
	bus.Subscribe(domain.KindKicked, f)
	bus.Subscribe(domain.KindJoinDenied, f)
}

func (f *Fanout) Deliver(ev domain.Event) {
	switch e := ev.(type) {
	case domain.Kicked:
		f.SendToUser(e.UserID, e)
		return
	case domain.JoinDenied:
		f.SendToUser(e.UserID, e)
		return
	}

	frame, err := EncodeFrame(Envelope{Type: ev.Kind(), Data: ev})
	if err != nil {
		log.Error().Err(err).Str("module", "app.fanout").Str("kind", string(ev.Kind())).Msg("encode event")
		return
	}

	if a, ok := ev.(domain.Addressed); ok {
		for _, uid := range a.Recipients() {
			if conn, ok := f.Registry.Conn(uid); ok {
				f.send(ev.Room(), uid, conn, frame)
			}
		}
		return
	}
	for _, snap := range f.Registry.MembersOfRoom(ev.Room()) {
		f.send(ev.Room(), snap.UserID, snap.Conn, frame)
	}
}

// SendToUser queues ev for uid and pushes it if uid is connected.
func (f *Fanout) SendToUser(uid domain.UserID, ev domain.Event) {
	env := f.Outbox.Push(uid, ev)
	conn, ok := f.Registry.Conn(uid)
	if !ok {
		log.Debug().Str("module", "app.fanout").Str("user", string(uid)).Str("kind", string(ev.Kind())).Msg("user offline, queued")
		return
	}
	frame, err := EncodeFrame(env)
	if err != nil {
		log.Error().Err(err).Str("module", "app.fanout").Str("kind", string(ev.Kind())).Msg("encode event")
		return
	}
	f.send(ev.Room(), uid, conn, frame)
}

// Redeliver pushes every unacked notification of uid, oldest first.
func (f *Fanout) Redeliver(uid domain.UserID) int {
	conn, ok := f.Registry.Conn(uid)
	if !ok {
		return 0
	}
	n := 0
	for _, env := range f.Outbox.Pending(uid) {
		frame, err := EncodeFrame(env)
		if err != nil {
			continue
		}
		if err := conn.TrySend(frame); err != nil {
			break
		}
		n++
	}
	return n
}

func (f *Fanout) send(room domain.RoomID, uid domain.UserID, conn core.SignalConnection, frame core.Frame) {
	if err := conn.TrySend(frame); err == nil {
		if f.Policy != nil {
			f.Policy.OnDelivered(uid)
		}
		return
	}
	if f.Policy == nil {
		return
	}
	switch f.Policy.OnBackPressure(room, uid) {
	case KickMember:
		log.Warn().Str("module", "app.fanout").Str("user", string(uid)).Str("room", string(room)).Msg("slow consumer disconnected")
		f.Registry.Cancel(uid)
	case DropFrame:
		log.Warn().Str("module", "app.fanout").Str("user", string(uid)).Str("room", string(room)).Msg("frame dropped")
	case MarkSlow, NoAction:
	}
}
