package orch

import (
	"context"
	"errors"
	"strings"

	"github.com/dkeye/LiveRoom/internal/core"
	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	maxTitleLen = 64
	maxChatLen  = 500
)

// StartStream opens a room for host and joins the host to it.
func (o *Orchestrator) StartStream(ctx context.Context, host domain.UserID, title string) (core.RoomService, error) {
	if _, err := o.Users.Get(ctx, host); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen]
	}
	room := o.Rooms.Create(host, title)
	log.Info().Str("module", "orch").Str("room", string(room.Room().ID)).Str("host", string(host)).Msg("stream started")
	if err := o.Join(ctx, host, room.Room().ID); err != nil {
		o.Rooms.StopRoom(room.Room().ID)
		return nil, err
	}
	return room, nil
}

// Join adds uid to the room. A connected user leaves its previous room
// first; one connection follows one room at a time.
func (o *Orchestrator) Join(ctx context.Context, uid domain.UserID, roomID domain.RoomID) error {
	if _, err := o.Users.Get(ctx, uid); err != nil {
		return err
	}
	room, err := o.room(roomID)
	if err != nil {
		return err
	}
	if prev, ok := o.Registry.RoomOf(uid); ok && prev != roomID {
		if err := o.Leave(uid, prev); err != nil && !errors.Is(err, domain.ErrRoomNotFound) {
			log.Warn().Err(err).Str("module", "orch").Str("user", string(uid)).Str("room", string(prev)).Msg("leave previous room")
		}
	}

	err = room.Commit(func(s *core.RoomState) ([]domain.Event, error) {
		added, err := s.Join(uid)
		if err != nil {
			return nil, err
		}
		o.Registry.UpdateRoom(uid, roomID)
		if !added {
			return nil, nil
		}
		return []domain.Event{
			s.PresenceEvent(uid, true),
			domain.OnlineUsersUpdated{RoomID: roomID, Ranked: s.Ranking()},
		}, nil
	})
	if errors.Is(err, domain.ErrJoinDenied) {
		log.Info().Str("module", "orch").Str("user", string(uid)).Str("room", string(roomID)).Msg("join denied")
		o.Fanout.SendToUser(uid, domain.JoinDenied{RoomID: roomID, UserID: uid})
	}
	return err
}

// Leave removes uid from the room. The last one out tears the room down.
func (o *Orchestrator) Leave(uid domain.UserID, roomID domain.RoomID) error {
	room, err := o.room(roomID)
	if err != nil {
		o.Registry.RemoveRoom(uid, roomID)
		return err
	}
	var remote []domain.Event
	torn := false
	err = room.Commit(func(s *core.RoomState) ([]domain.Event, error) {
		o.Registry.RemoveRoom(uid, roomID)
		if !s.Leave(uid) {
			return nil, nil
		}
		if s.MemberCount() == 0 {
			torn = true
			var local []domain.Event
			local, remote = o.teardownLocked(s)
			return local, nil
		}
		return []domain.Event{
			s.PresenceEvent(uid, false),
			domain.OnlineUsersUpdated{RoomID: roomID, Ranked: s.Ranking()},
		}, nil
	})
	if err != nil {
		return err
	}
	if torn {
		o.afterTeardown(roomID, remote)
	}
	return nil
}

// Kick bans target from the room. Only the host and moderators may kick.
func (o *Orchestrator) Kick(actor, target domain.UserID, roomID domain.RoomID) error {
	room, err := o.room(roomID)
	if err != nil {
		return err
	}
	var remote []domain.Event
	torn := false
	err = room.Commit(func(s *core.RoomState) ([]domain.Event, error) {
		wasPresent := s.IsPresent(target)
		if err := s.Kick(actor, target); err != nil {
			return nil, err
		}
		o.Registry.RemoveRoom(target, roomID)
		evs := []domain.Event{domain.Kicked{RoomID: roomID, UserID: target, By: actor}}
		if !wasPresent {
			return evs, nil
		}
		if s.MemberCount() == 0 {
			torn = true
			local, rest := o.teardownLocked(s)
			remote = rest
			return append(evs, local...), nil
		}
		return append(evs,
			s.PresenceEvent(target, false),
			domain.OnlineUsersUpdated{RoomID: roomID, Ranked: s.Ranking()},
		), nil
	})
	if errors.Is(err, domain.ErrUnauthorized) {
		log.Warn().Str("module", "orch").Str("actor", string(actor)).Str("target", string(target)).Str("room", string(roomID)).Msg("kick denied")
		return err
	}
	if err != nil {
		return err
	}
	log.Info().Str("module", "orch").Str("actor", string(actor)).Str("target", string(target)).Str("room", string(roomID)).Msg("kicked")
	if torn {
		o.afterTeardown(roomID, remote)
	}
	return nil
}

// PromoteModerator is host-only and idempotent.
func (o *Orchestrator) PromoteModerator(actor, target domain.UserID, roomID domain.RoomID) error {
	room, err := o.room(roomID)
	if err != nil {
		return err
	}
	changed := false
	err = room.Commit(func(s *core.RoomState) ([]domain.Event, error) {
		ok, err := s.Promote(actor, target)
		changed = ok
		return nil, err
	})
	if errors.Is(err, domain.ErrUnauthorized) {
		log.Warn().Str("module", "orch").Str("actor", string(actor)).Str("target", string(target)).Str("room", string(roomID)).Msg("promote denied")
		return err
	}
	if err == nil && changed {
		log.Info().Str("module", "orch").Str("target", string(target)).Str("room", string(roomID)).Msg("moderator promoted")
	}
	return err
}

// EndStream is the host's explicit teardown.
func (o *Orchestrator) EndStream(actor domain.UserID, roomID domain.RoomID) error {
	room, err := o.room(roomID)
	if err != nil {
		return err
	}
	if room.Room().HostID != actor {
		log.Warn().Str("module", "orch").Str("actor", string(actor)).Str("room", string(roomID)).Msg("end stream denied")
		return domain.ErrUnauthorized
	}
	var remote []domain.Event
	err = room.Commit(func(s *core.RoomState) ([]domain.Event, error) {
		local, rest := o.teardownLocked(s)
		remote = rest
		return local, nil
	})
	if err != nil {
		return err
	}
	o.afterTeardown(roomID, remote)
	return nil
}

// teardownLocked clears the room state and ends its battle. It returns the
// events for this room and those for the opponent room, if any.
func (o *Orchestrator) teardownLocked(s *core.RoomState) (local, remote []domain.Event) {
	id := s.Room.ID
	local, remote = splitByRoom(id, o.PK.End(id))
	for _, uid := range s.Present() {
		o.Registry.RemoveRoom(uid, id)
	}
	audience := s.Close()
	local = append(local, domain.StreamEnded{RoomID: id, Audience: audience})
	return local, remote
}

func (o *Orchestrator) afterTeardown(roomID domain.RoomID, remote []domain.Event) {
	o.Rooms.StopRoom(roomID)
	o.Route(remote...)
	if o.Mirror != nil {
		if err := o.Mirror.Clear(context.Background(), roomID); err != nil {
			log.Error().Err(err).Str("module", "orch").Str("room", string(roomID)).Msg("clear rank mirror")
		}
	}
	log.Info().Str("module", "orch").Str("room", string(roomID)).Msg("stream torn down")
}

// OnlineUsers resolves the room ranking to full users.
func (o *Orchestrator) OnlineUsers(ctx context.Context, roomID domain.RoomID) ([]domain.RankedUser, error) {
	room, err := o.room(roomID)
	if err != nil {
		return nil, err
	}
	var ranked []domain.RankEntry
	closed := false
	room.View(func(s *core.RoomState) {
		closed = s.Closed()
		ranked = s.Ranking()
	})
	if closed {
		return nil, domain.ErrRoomNotFound
	}
	out := make([]domain.RankedUser, 0, len(ranked))
	for _, r := range ranked {
		u, err := o.Users.Get(ctx, r.UserID)
		if errors.Is(err, domain.ErrUserNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, domain.RankedUser{User: *u, Value: r.Value})
	}
	return out, nil
}

// RoomGifts is the received-gift aggregate of a room, by gift name.
func (o *Orchestrator) RoomGifts(roomID domain.RoomID) (map[string]int64, error) {
	room, err := o.room(roomID)
	if err != nil {
		return nil, err
	}
	var out map[string]int64
	room.View(func(s *core.RoomState) { out = s.Received() })
	return out, nil
}

// GiftHistory lists what uid sent in this room session.
func (o *Orchestrator) GiftHistory(uid domain.UserID, roomID domain.RoomID) ([]domain.GiftRecord, error) {
	room, err := o.room(roomID)
	if err != nil {
		return nil, err
	}
	var out []domain.GiftRecord
	room.View(func(s *core.RoomState) { out = s.History(uid) })
	return out, nil
}

// SendChat broadcasts text from a present user.
func (o *Orchestrator) SendChat(uid domain.UserID, roomID domain.RoomID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ErrEmptyMessage
	}
	if len(text) > maxChatLen {
		text = text[:maxChatLen]
	}
	if !o.Chat.Allow(uid) {
		return domain.ErrRateLimited
	}
	room, err := o.room(roomID)
	if err != nil {
		return err
	}
	return room.Commit(func(s *core.RoomState) ([]domain.Event, error) {
		if !s.IsPresent(uid) {
			return nil, domain.ErrNotInRoom
		}
		return []domain.Event{domain.ChatMessage{RoomID: roomID, From: uid, Text: text, At: timeNow()}}, nil
	})
}
