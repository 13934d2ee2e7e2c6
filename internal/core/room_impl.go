package core

import (
	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/rs/zerolog/log"
)

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	seq     Sequencer
	state   *RoomState
	publish func(domain.Event)
}

func NewRoomService(room domain.Room, publish func(domain.Event)) RoomService {
	if publish == nil {
		publish = func(domain.Event) {}
	}
	return &roomImpl{state: NewRoomState(room), publish: publish}
}

func (r *roomImpl) Room() domain.Room { return r.state.Room }

func (r *roomImpl) MemberCount() int {
	n := 0
	r.seq.View(func() { n = r.state.MemberCount() })
	return n
}

func (r *roomImpl) Closed() bool {
	closed := false
	r.seq.View(func() { closed = r.state.Closed() })
	return closed
}

func (r *roomImpl) Commit(fn func(*RoomState) ([]domain.Event, error)) error {
	return r.seq.Commit(func() ([]domain.Event, error) {
		if r.state.Closed() {
			return nil, domain.ErrRoomNotFound
		}
		evs, err := fn(r.state)
		if err != nil {
			return nil, err
		}
		return r.state.Admit(evs), nil
	}, r.deliver)
}

func (r *roomImpl) View(fn func(*RoomState)) {
	r.seq.View(func() { fn(r.state) })
}

func (r *roomImpl) Emit(evs ...domain.Event) {
	_ = r.seq.Commit(func() ([]domain.Event, error) { return r.state.Admit(evs), nil }, r.deliver)
}

func (r *roomImpl) deliver(ev domain.Event) {
	log.Debug().Str("module", "core.room").Str("room", string(r.state.Room.ID)).Str("kind", string(ev.Kind())).Msg("emit")
	r.publish(ev)
}
