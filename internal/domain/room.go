package domain

import "time"

type RoomID string

// Room is a live session hosted by one user.
type Room struct {
	ID        RoomID    `json:"id"`
	HostID    UserID    `json:"hostId"`
	Title     string    `json:"title"`
	StartedAt time.Time `json:"startedAt"`
}

// Member represents user's participation meta for a room.
// No transport or lifecycle logic here.
type Member struct {
	UserID  UserID
	JoinSeq uint64
}

// RankEntry is one row of a room's contribution ranking.
type RankEntry struct {
	UserID UserID `json:"userId"`
	Value  int64  `json:"value"`
}

// RankedUser is a ranking row resolved to the full user.
type RankedUser struct {
	User
	Value int64 `json:"value"`
}
