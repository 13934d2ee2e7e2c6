package core

import (
	"errors"
	"testing"

	"github.com/dkeye/LiveRoom/internal/domain"
)

func newState() *RoomState {
	return NewRoomState(domain.Room{ID: "r", HostID: "host"})
}

func TestJoinIsIdempotentAndHonoursBans(t *testing.T) {
	s := newState()
	if added, err := s.Join("a"); err != nil || !added {
		t.Fatalf("first join: %v %v", added, err)
	}
	if added, err := s.Join("a"); err != nil || added {
		t.Fatalf("second join: %v %v", added, err)
	}
	_, _ = s.Join("host")
	if err := s.Kick("host", "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Join("a"); !errors.Is(err, domain.ErrJoinDenied) {
		t.Fatalf("banned join: %v", err)
	}
}

func TestKickDropsModeratorRole(t *testing.T) {
	s := newState()
	_, _ = s.Join("m")
	_, _ = s.Promote("host", "m")
	if err := s.Kick("host", "m"); err != nil {
		t.Fatal(err)
	}
	if s.IsModerator("m") {
		t.Fatal("kicked user kept moderator role")
	}
}

func TestLedgerEqualsSumOfGifts(t *testing.T) {
	s := newState()
	gifts := []int64{5, 10, 99, 1000}
	var want int64
	for _, g := range gifts {
		s.AddContribution("a", g)
		s.RecordGift(domain.GiftRecord{From: "a", Gift: "x", Quantity: 1, Total: g})
		want += g
	}
	if s.Contribution("a") != want || s.TotalContribution() != want {
		t.Fatalf("ledger %d, want %d", s.Contribution("a"), want)
	}
	if s.Received()["x"] != int64(len(gifts)) {
		t.Fatalf("aggregate %v", s.Received())
	}
}

func TestCloseClearsEverything(t *testing.T) {
	s := newState()
	_, _ = s.Join("a")
	_, _ = s.Join("b")
	_, _ = s.Promote("host", "a")
	s.AddContribution("a", 10)

	audience := s.Close()
	if len(audience) != 2 || !s.Closed() {
		t.Fatalf("audience %v closed=%v", audience, s.Closed())
	}
	if s.MemberCount() != 0 || s.TotalContribution() != 0 || len(s.Moderators()) != 0 {
		t.Fatal("state survived close")
	}
}

func TestRoomServiceRejectsCommitsAfterClose(t *testing.T) {
	var published []domain.Event
	r := NewRoomService(domain.Room{ID: "r", HostID: "h"}, func(ev domain.Event) { published = append(published, ev) })
	err := r.Commit(func(s *RoomState) ([]domain.Event, error) {
		s.Close()
		return []domain.Event{domain.StreamEnded{RoomID: "r"}}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	err = r.Commit(func(s *RoomState) ([]domain.Event, error) {
		t.Fatal("fn ran on closed room")
		return nil, nil
	})
	if !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("got %v", err)
	}
	if len(published) != 1 {
		t.Fatalf("published %v", published)
	}
}

func TestCatalogSkipsInvalidEntries(t *testing.T) {
	c := NewCatalog([]domain.Gift{
		{Name: "b", Price: 10},
		{Name: "", Price: 1},
		{Name: "a", Price: 5},
		{Name: "b", Price: 99},
		{Name: "neg", Price: -1},
	}, "a")
	list := c.List()
	if len(list) != 2 || list[0].Name != "a" || list[1].Price != 10 {
		t.Fatalf("catalog %v", list)
	}
	if _, ok := c.Lookup("neg"); ok {
		t.Fatal("negative price accepted")
	}
}

func TestAdmitDropsSupersededBattleEvents(t *testing.T) {
	s := newState()
	batch := []domain.Event{
		domain.HeartUpdate{RoomID: "r", HeartsA: 2, Seq: 2},
		domain.HeartUpdate{RoomID: "r", HeartsA: 1, Seq: 1},
		domain.ChatMessage{RoomID: "r", Text: "hi"},
	}
	out := s.Admit(batch)
	if len(out) != 2 {
		t.Fatalf("admitted %d events", len(out))
	}
	if hu := out[0].(domain.HeartUpdate); hu.HeartsA != 2 {
		t.Fatalf("kept stale snapshot %+v", hu)
	}

	s.Admit([]domain.Event{domain.PKEnded{RoomID: "r", Seq: 5}})
	if out := s.Admit([]domain.Event{domain.ScoreUpdate{RoomID: "r", Seq: 4}}); len(out) != 0 {
		t.Fatalf("score update admitted after end: %v", out)
	}
	if out := s.Admit([]domain.Event{domain.PKStarted{RoomID: "r", Seq: 6}}); len(out) != 1 {
		t.Fatal("next battle start dropped")
	}
}
