package core

import (
	"sync"

	"github.com/dkeye/LiveRoom/internal/domain"
)

// Sequencer serialises state mutations and publishes their events in commit
// order. The state lock is released before subscribers run; the emit lock is
// taken before that release so a later commit cannot overtake an earlier one.
// Subscribers must not commit on the same Sequencer synchronously.
type Sequencer struct {
	state sync.Mutex
	emit  sync.Mutex
}

func (s *Sequencer) Commit(fn func() ([]domain.Event, error), publish func(domain.Event)) error {
	s.state.Lock()
	evs, err := fn()
	if err != nil {
		s.state.Unlock()
		return err
	}
	s.emit.Lock()
	s.state.Unlock()
	defer s.emit.Unlock()
	for _, ev := range evs {
		publish(ev)
	}
	return nil
}

// View runs fn with the state lock held and publishes nothing.
func (s *Sequencer) View(fn func()) {
	s.state.Lock()
	defer s.state.Unlock()
	fn()
}
