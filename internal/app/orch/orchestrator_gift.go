package orch

import (
	"context"
	"errors"
	"math"

	"github.com/dkeye/LiveRoom/internal/core"
	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/rs/zerolog/log"
)

type GiftResult struct {
	Sender   *domain.User `json:"updatedSender"`
	Receiver *domain.User `json:"updatedReceiver"`
}

// SendGift moves price*quantity diamonds from sender to the room host.
//
// Validation happens before anything is touched. The wallet transfer is one
// store transaction outside the room lock; the ledger, the gift aggregate,
// the battle score and the events are then committed under the room lock,
// so every subscriber sees gifts in ledger order. If the room closed in
// between, the transfer is compensated, both legs are journaled, and
// ErrRoomNotFound returned.
// Journal, rank mirror and follow side effects run after the commit and
// only log their failures.
func (o *Orchestrator) SendGift(ctx context.Context, sender domain.UserID, roomID domain.RoomID, giftName string, quantity int64) (*GiftResult, error) {
	gift, ok := o.Catalog.Lookup(giftName)
	if !ok {
		return nil, domain.ErrGiftNotFound
	}
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if gift.Price > 0 && quantity > math.MaxInt64/gift.Price {
		return nil, domain.ErrInvalidQuantity
	}
	total := gift.Price * quantity

	room, err := o.room(roomID)
	if err != nil {
		return nil, err
	}
	host := room.Room().HostID
	fanClubGift := gift.Name == o.Catalog.FanClubGift

	joinedFanClub := false
	users, err := core.UpdateWithRetry(ctx, o.Users, []domain.UserID{sender, host}, func(m map[domain.UserID]*domain.User) error {
		from, to := m[sender], m[host]
		joinedFanClub = false
		if err := core.Debit(from, total); err != nil {
			return err
		}
		if err := core.Credit(to, total); err != nil {
			return err
		}
		core.GrantXP(from, o.Wallet.Levels, total)
		if sender != host {
			core.GrantXP(to, o.Wallet.Levels, total)
		}
		if fanClubGift && sender != host && !from.IsFanOf(host) {
			from.FanClub = &domain.FanClub{HostID: host, Level: 1}
			joinedFanClub = true
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			log.Info().Str("module", "orch.gift").Str("user", string(sender)).Str("gift", gift.Name).Int64("total", total).Msg("insufficient funds")
		}
		return nil, err
	}
	from, to := users[sender], users[host]

	now := timeNow()
	rec := domain.GiftRecord{From: sender, To: host, Gift: gift.Name, Quantity: quantity, Total: total, At: now}
	var remote []domain.Event
	err = room.Commit(func(s *core.RoomState) ([]domain.Event, error) {
		seq := s.RecordGift(rec)
		s.AddContribution(sender, total)
		local, rest := splitByRoom(roomID, o.PK.Attribute(roomID, total))
		remote = rest

		evs := []domain.Event{domain.GiftSent{
			RoomID:   roomID,
			Seq:      seq,
			From:     sender,
			To:       host,
			Gift:     gift.Name,
			Quantity: quantity,
			Total:    total,
			At:       now,
		}}
		evs = append(evs, local...)
		evs = append(evs, domain.UserUpdated{RoomID: roomID, User: *from})
		if sender != host {
			evs = append(evs, domain.UserUpdated{RoomID: roomID, User: *to})
		}
		evs = append(evs, domain.OnlineUsersUpdated{RoomID: roomID, Ranked: s.Ranking()})
		return evs, nil
	})
	bg := detached(ctx)
	recs := []domain.PurchaseRecord{
		{UserID: sender, Kind: domain.RecordGiftSent, Diamonds: -total, RoomID: roomID, Counterparty: host, Gift: gift.Name, Quantity: quantity, CreatedAt: now},
		{UserID: host, Kind: domain.RecordGiftReceived, Earnings: total, RoomID: roomID, Counterparty: sender, Gift: gift.Name, Quantity: quantity, CreatedAt: now},
	}
	if err != nil {
		if cerr := o.compensateGift(bg, sender, host, total); cerr == nil {
			recs = append(recs,
				domain.PurchaseRecord{UserID: sender, Kind: domain.RecordGiftRefund, Diamonds: total, RoomID: roomID, Counterparty: host, Gift: gift.Name, Quantity: quantity},
				domain.PurchaseRecord{UserID: host, Kind: domain.RecordGiftRefund, Earnings: -total, RoomID: roomID, Counterparty: sender, Gift: gift.Name, Quantity: quantity},
			)
		}
		o.Wallet.Record(bg, recs...)
		return nil, err
	}
	o.Route(remote...)

	o.Wallet.Record(bg, recs...)
	o.mirrorGift(bg, room, sender, total)
	if (gift.TriggersAutoFollow || joinedFanClub) && sender != host {
		o.autoFollow(bg, roomID, sender, host)
	}

	log.Info().Str("module", "orch.gift").Str("room", string(roomID)).Str("from", string(sender)).Str("gift", gift.Name).
		Int64("quantity", quantity).Int64("total", total).Msg("gift sent")
	return &GiftResult{Sender: from, Receiver: to}, nil
}

// compensateGift reverses a transfer whose room vanished before the ledger
// commit. Xp is kept. If the host already spent the earnings the transfer
// stands and the error is returned.
func (o *Orchestrator) compensateGift(ctx context.Context, sender, host domain.UserID, total int64) error {
	_, err := core.UpdateWithRetry(ctx, o.Users, []domain.UserID{sender, host}, func(m map[domain.UserID]*domain.User) error {
		from, to := m[sender], m[host]
		if to.Earnings < total {
			return domain.ErrInsufficientEarnings
		}
		to.Earnings -= total
		to.TotalReceived -= total
		from.Diamonds += total
		from.TotalSent -= total
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("module", "orch.gift").Str("from", string(sender)).Str("to", string(host)).Int64("total", total).Msg("gift compensation failed")
		return err
	}
	log.Warn().Str("module", "orch.gift").Str("from", string(sender)).Int64("total", total).Msg("gift compensated, room closed")
	return nil
}

// mirrorGift copies a committed contribution to the rank mirror. A room torn
// down meanwhile must not keep a key: the check after Incr either sees the
// close and clears again, or precedes the teardown's own Clear.
func (o *Orchestrator) mirrorGift(ctx context.Context, room core.RoomService, sender domain.UserID, total int64) {
	if o.Mirror == nil || room.Closed() {
		return
	}
	roomID := room.Room().ID
	if err := o.Mirror.Incr(ctx, roomID, sender, total); err != nil {
		log.Error().Err(err).Str("module", "orch.gift").Str("room", string(roomID)).Msg("rank mirror incr")
		return
	}
	if room.Closed() {
		if err := o.Mirror.Clear(ctx, roomID); err != nil {
			log.Error().Err(err).Str("module", "orch.gift").Str("room", string(roomID)).Msg("clear rank mirror")
		}
	}
}

func (o *Orchestrator) autoFollow(ctx context.Context, roomID domain.RoomID, follower, followed domain.UserID) {
	changed, err := o.Follows.Follow(ctx, follower, followed)
	if err != nil {
		log.Error().Err(err).Str("module", "orch.gift").Str("follower", string(follower)).Str("followed", string(followed)).Msg("auto follow")
		return
	}
	if !changed {
		return
	}
	ev, err := o.followEvent(ctx, roomID, follower, followed, true)
	if err != nil {
		log.Error().Err(err).Str("module", "orch.gift").Msg("auto follow event")
		return
	}
	o.publishFollow(ev)
}
