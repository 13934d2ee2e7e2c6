package orch

import (
	"errors"

	"github.com/dkeye/LiveRoom/internal/app/pk"
	"github.com/dkeye/LiveRoom/internal/core"
	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/rs/zerolog/log"
)

// StartPK links the actor's room with the opponent room. Each side starts
// from its room's contribution total so far.
func (o *Orchestrator) StartPK(actor domain.UserID, roomID, opponentID domain.RoomID) error {
	room, err := o.room(roomID)
	if err != nil {
		return err
	}
	opponent, err := o.room(opponentID)
	if err != nil {
		return err
	}
	if room.Room().HostID != actor {
		log.Warn().Str("module", "orch.pk").Str("actor", string(actor)).Str("room", string(roomID)).Msg("pk start denied")
		return domain.ErrUnauthorized
	}

	seedA := contributionTotal(room)
	seedB := contributionTotal(opponent)
	evs, err := o.PK.Start(roomID, opponentID, seedA, seedB)
	if err != nil {
		return err
	}
	o.Route(evs...)
	return nil
}

func contributionTotal(room core.RoomService) int64 {
	var total int64
	room.View(func(s *core.RoomState) { total = s.TotalContribution() })
	return total
}

// EndPK stops the battle of the actor's room. Ending twice is fine.
func (o *Orchestrator) EndPK(actor domain.UserID, roomID domain.RoomID) error {
	room, err := o.room(roomID)
	if err != nil {
		return err
	}
	if room.Room().HostID != actor {
		log.Warn().Str("module", "orch.pk").Str("actor", string(actor)).Str("room", string(roomID)).Msg("pk end denied")
		return domain.ErrUnauthorized
	}
	o.Route(o.PK.End(roomID)...)
	return nil
}

// Heart records a vote for team. An empty team votes for the room's own side.
func (o *Orchestrator) Heart(uid domain.UserID, roomID domain.RoomID, team string) error {
	room, err := o.room(roomID)
	if err != nil {
		return err
	}
	var side domain.Side
	if team == "" {
		s, ok := o.PK.SideOf(roomID)
		if !ok {
			return domain.ErrNoBattle
		}
		side = s
	} else if side, err = domain.ParseSide(team); err != nil {
		return err
	}
	if !o.Hearts.Allow(uid) {
		return domain.ErrRateLimited
	}

	var remote []domain.Event
	err = room.Commit(func(*core.RoomState) ([]domain.Event, error) {
		evs, err := o.PK.RecordHeart(roomID, side)
		if err != nil {
			return nil, err
		}
		local, rest := splitByRoom(roomID, evs)
		remote = rest
		return local, nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNoBattle) {
			log.Warn().Err(err).Str("module", "orch.pk").Str("room", string(roomID)).Msg("heart")
		}
		return err
	}
	o.Route(remote...)
	return nil
}

func (o *Orchestrator) PKView(roomID domain.RoomID) (pk.View, error) {
	v, ok := o.PK.Get(roomID)
	if !ok {
		return pk.View{}, domain.ErrNoBattle
	}
	return v, nil
}
