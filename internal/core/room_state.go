package core

import (
	"sort"

	"github.com/dkeye/LiveRoom/internal/domain"
)

// RoomState is the presence set, moderation lists and contribution ledger of
// one room. It is not safe for concurrent use; RoomService serialises access.
type RoomState struct {
	Room domain.Room

	members    map[domain.UserID]*domain.Member
	joinSeq    uint64
	kicked     map[domain.UserID]struct{}
	moderators map[domain.UserID]struct{}

	ledger   map[domain.UserID]int64
	received map[string]int64
	history  map[domain.UserID][]domain.GiftRecord
	giftSeq  uint64

	// lastOrdered is the highest battle sequence published to this room.
	lastOrdered uint64

	closed bool
}

func NewRoomState(room domain.Room) *RoomState {
	return &RoomState{
		Room:       room,
		members:    make(map[domain.UserID]*domain.Member),
		kicked:     make(map[domain.UserID]struct{}),
		moderators: make(map[domain.UserID]struct{}),
		ledger:     make(map[domain.UserID]int64),
		received:   make(map[string]int64),
		history:    make(map[domain.UserID][]domain.GiftRecord),
	}
}

func (s *RoomState) Closed() bool { return s.closed }

// Join adds u to the presence set. It reports false when u was already present.
func (s *RoomState) Join(u domain.UserID) (bool, error) {
	if _, banned := s.kicked[u]; banned {
		return false, domain.ErrJoinDenied
	}
	if _, ok := s.members[u]; ok {
		return false, nil
	}
	s.joinSeq++
	s.members[u] = &domain.Member{UserID: u, JoinSeq: s.joinSeq}
	return true, nil
}

func (s *RoomState) Leave(u domain.UserID) bool {
	if _, ok := s.members[u]; !ok {
		return false
	}
	delete(s.members, u)
	return true
}

func (s *RoomState) IsPresent(u domain.UserID) bool {
	_, ok := s.members[u]
	return ok
}

func (s *RoomState) IsKicked(u domain.UserID) bool {
	_, ok := s.kicked[u]
	return ok
}

func (s *RoomState) IsModerator(u domain.UserID) bool {
	_, ok := s.moderators[u]
	return ok
}

func (s *RoomState) MemberCount() int { return len(s.members) }

// Present lists the presence set in join order.
func (s *RoomState) Present() []domain.UserID {
	ms := s.sortedMembers()
	out := make([]domain.UserID, len(ms))
	for i, m := range ms {
		out[i] = m.UserID
	}
	return out
}

func (s *RoomState) sortedMembers() []*domain.Member {
	ms := make([]*domain.Member, 0, len(s.members))
	for _, m := range s.members {
		ms = append(ms, m)
	}
	sort.Slice(ms, func(i, j int) bool { return ms[i].JoinSeq < ms[j].JoinSeq })
	return ms
}

// Kick bans target from the room and drops it from presence.
// Host and moderators may kick; a moderator cannot kick another moderator,
// and nobody kicks the host.
func (s *RoomState) Kick(actor, target domain.UserID) error {
	host := s.Room.HostID
	if target == host {
		return domain.ErrUnauthorized
	}
	switch {
	case actor == host:
	case s.IsModerator(actor):
		if s.IsModerator(target) {
			return domain.ErrUnauthorized
		}
	default:
		return domain.ErrUnauthorized
	}
	s.kicked[target] = struct{}{}
	delete(s.moderators, target)
	delete(s.members, target)
	return nil
}

// Promote makes target a moderator. Only the host may promote; promoting an
// existing moderator (or the host) changes nothing and reports false.
func (s *RoomState) Promote(actor, target domain.UserID) (bool, error) {
	if actor != s.Room.HostID {
		return false, domain.ErrUnauthorized
	}
	if target == s.Room.HostID || s.IsModerator(target) {
		return false, nil
	}
	s.moderators[target] = struct{}{}
	return true, nil
}

func (s *RoomState) Moderators() []domain.UserID {
	out := make([]domain.UserID, 0, len(s.moderators))
	for u := range s.moderators {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *RoomState) AddContribution(u domain.UserID, amount int64) int64 {
	s.ledger[u] += amount
	return s.ledger[u]
}

func (s *RoomState) Contribution(u domain.UserID) int64 { return s.ledger[u] }

// TotalContribution sums the ledger of the current session.
func (s *RoomState) TotalContribution() int64 {
	var sum int64
	for _, v := range s.ledger {
		sum += v
	}
	return sum
}

// Ranking orders present users by contribution, ties broken by join order.
func (s *RoomState) Ranking() []domain.RankEntry {
	ms := s.sortedMembers()
	sort.SliceStable(ms, func(i, j int) bool { return s.ledger[ms[i].UserID] > s.ledger[ms[j].UserID] })
	out := make([]domain.RankEntry, len(ms))
	for i, m := range ms {
		out[i] = domain.RankEntry{UserID: m.UserID, Value: s.ledger[m.UserID]}
	}
	return out
}

// RecordGift appends rec to the display aggregate and the sender's history
// and returns the room-local gift sequence number.
func (s *RoomState) RecordGift(rec domain.GiftRecord) uint64 {
	s.giftSeq++
	s.received[rec.Gift] += rec.Quantity
	s.history[rec.From] = append(s.history[rec.From], rec)
	return s.giftSeq
}

func (s *RoomState) Received() map[string]int64 {
	out := make(map[string]int64, len(s.received))
	for k, v := range s.received {
		out[k] = v
	}
	return out
}

func (s *RoomState) History(u domain.UserID) []domain.GiftRecord {
	return append([]domain.GiftRecord(nil), s.history[u]...)
}

func (s *RoomState) PresenceEvent(u domain.UserID, joined bool) domain.PresenceChanged {
	return domain.PresenceChanged{
		RoomID:  s.Room.ID,
		UserID:  u,
		Joined:  joined,
		Present: s.Present(),
		Ranked:  s.Ranking(),
	}
}

// Admit filters a batch about to be published. Ordered events at or below
// the last published sequence are dropped, since a newer snapshot of the
// same counters has already gone out.
func (s *RoomState) Admit(evs []domain.Event) []domain.Event {
	out := make([]domain.Event, 0, len(evs))
	for _, ev := range evs {
		if o, ok := ev.(domain.Ordered); ok {
			if o.OrderSeq() <= s.lastOrdered {
				continue
			}
			s.lastOrdered = o.OrderSeq()
		}
		out = append(out, ev)
	}
	return out
}

// Close tears the room down and returns who was present.
func (s *RoomState) Close() []domain.UserID {
	audience := s.Present()
	s.closed = true
	s.members = make(map[domain.UserID]*domain.Member)
	s.kicked = make(map[domain.UserID]struct{})
	s.moderators = make(map[domain.UserID]struct{})
	s.ledger = make(map[domain.UserID]int64)
	s.received = make(map[string]int64)
	s.history = make(map[domain.UserID][]domain.GiftRecord)
	return audience
}
