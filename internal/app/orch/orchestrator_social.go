package orch

import (
	"context"

	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/rs/zerolog/log"
)

// Profile is a user with its follow counters derived from the relation store.
type Profile struct {
	*domain.User
	FollowingCount int64 `json:"followingCount"`
	FansCount      int64 `json:"fansCount"`
	IsFollowing    bool  `json:"isFollowing"`
	IsFriend       bool  `json:"isFriend"`
}

type FollowResult struct {
	Following bool     `json:"following"`
	Follower  *Profile `json:"updatedFollower"`
	Followed  *Profile `json:"updatedFollowed"`
}

// RegisterUser creates an account with zero balance. A positive diamonds
// value is then credited through Recharge so the journal explains it.
func (o *Orchestrator) RegisterUser(ctx context.Context, username string, diamonds int64) (*domain.User, error) {
	if diamonds < 0 {
		return nil, domain.ErrInvalidAmount
	}
	u, err := domain.NewUser(username)
	if err != nil {
		return nil, err
	}
	if err := o.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	log.Info().Str("module", "orch.social").Str("user", string(u.ID)).Str("username", u.Username).Msg("user registered")
	if diamonds > 0 {
		return o.Wallet.Recharge(ctx, u.ID, diamonds)
	}
	return o.Users.Get(ctx, u.ID)
}

// Profile loads id as seen by viewer. An empty viewer sees no relation flags.
func (o *Orchestrator) Profile(ctx context.Context, viewer, id domain.UserID) (*Profile, error) {
	u, err := o.Users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p := &Profile{User: u}
	if p.FollowingCount, p.FansCount, err = o.Follows.Counts(ctx, id); err != nil {
		return nil, err
	}
	if viewer == "" || viewer == id {
		return p, nil
	}
	if p.IsFollowing, err = o.Follows.IsFollowing(ctx, viewer, id); err != nil {
		return nil, err
	}
	back, err := o.Follows.IsFollowing(ctx, id, viewer)
	if err != nil {
		return nil, err
	}
	p.IsFriend = p.IsFollowing && back
	return p, nil
}

// ToggleFollow flips the follower->followed edge. When roomID names a live
// room the change is also broadcast there.
func (o *Orchestrator) ToggleFollow(ctx context.Context, follower, followed domain.UserID, roomID domain.RoomID) (*FollowResult, error) {
	if follower == followed {
		return nil, domain.ErrSelfFollow
	}
	for _, id := range []domain.UserID{follower, followed} {
		if _, err := o.Users.Get(ctx, id); err != nil {
			return nil, err
		}
	}
	following, err := o.Follows.IsFollowing(ctx, follower, followed)
	if err != nil {
		return nil, err
	}
	if following {
		_, err = o.Follows.Unfollow(ctx, follower, followed)
	} else {
		_, err = o.Follows.Follow(ctx, follower, followed)
	}
	if err != nil {
		return nil, err
	}
	following = !following

	ev, err := o.followEvent(ctx, roomID, follower, followed, following)
	if err != nil {
		return nil, err
	}
	o.publishFollow(ev)

	res := &FollowResult{Following: following}
	if res.Follower, err = o.Profile(ctx, followed, follower); err != nil {
		return nil, err
	}
	if res.Followed, err = o.Profile(ctx, follower, followed); err != nil {
		return nil, err
	}
	log.Info().Str("module", "orch.social").Str("follower", string(follower)).Str("followed", string(followed)).Bool("following", following).Msg("follow toggled")
	return res, nil
}

func (o *Orchestrator) followEvent(ctx context.Context, roomID domain.RoomID, follower, followed domain.UserID, following bool) (domain.FollowChanged, error) {
	back, err := o.Follows.IsFollowing(ctx, followed, follower)
	if err != nil {
		return domain.FollowChanged{}, err
	}
	_, fans, err := o.Follows.Counts(ctx, followed)
	if err != nil {
		return domain.FollowChanged{}, err
	}
	return domain.FollowChanged{
		RoomID:    roomID,
		Follower:  follower,
		Followed:  followed,
		Following: following,
		Friends:   following && back,
		FansCount: fans,
	}, nil
}

// publishFollow tells the followed user directly and, if the event names a
// live room, everyone in it.
func (o *Orchestrator) publishFollow(ev domain.FollowChanged) {
	if ev.RoomID != "" {
		o.Route(ev)
	}
	o.Fanout.SendToUser(ev.Followed, ev)
}

// DeleteUser removes an account and every follow edge touching it.
func (o *Orchestrator) DeleteUser(ctx context.Context, actor, id domain.UserID) error {
	if actor != id {
		log.Warn().Str("module", "orch.social").Str("actor", string(actor)).Str("user", string(id)).Msg("delete denied")
		return domain.ErrUnauthorized
	}
	if roomID, ok := o.Registry.RoomOf(id); ok {
		if err := o.Leave(id, roomID); err != nil {
			log.Debug().Err(err).Str("module", "orch.social").Str("user", string(id)).Str("room", string(roomID)).Msg("leave on delete")
		}
	}
	if err := o.Follows.RemoveUser(ctx, id); err != nil {
		return err
	}
	if err := o.Users.Delete(ctx, id); err != nil {
		return err
	}
	o.Outbox.Forget(id)
	o.Registry.Cancel(id)
	log.Info().Str("module", "orch.social").Str("user", string(id)).Msg("user deleted")
	return nil
}
