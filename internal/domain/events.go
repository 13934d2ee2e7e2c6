package domain

import "time"

type EventKind string

const (
	KindPresence    EventKind = "presenceUpdate"
	KindOnlineUsers EventKind = "onlineUsersUpdate"
	KindGift        EventKind = "newStreamGift"
	KindFollow      EventKind = "followUpdate"
	KindUser        EventKind = "userUpdate"
	KindKicked      EventKind = "kicked"
	KindJoinDenied  EventKind = "joinDenied"
	KindChat        EventKind = "chatMessage"
	KindStreamEnded EventKind = "streamEnded"
	KindPKStarted   EventKind = "pkStarted"
	KindHeart       EventKind = "pkHeartUpdate"
	KindScore       EventKind = "pkScoreUpdate"
	KindPKEnded     EventKind = "pkEnded"
)

// RoomKinds are fanned out to everyone present in the event's room.
var RoomKinds = []EventKind{
	KindPresence, KindOnlineUsers, KindGift, KindFollow, KindUser, KindChat,
	KindStreamEnded, KindPKStarted, KindHeart, KindScore, KindPKEnded,
}

// Event is the closed set of messages pushed to subscribers.
type Event interface {
	Kind() EventKind
	Room() RoomID
	isEvent()
}

// Addressed events name their recipients instead of relying on room presence.
type Addressed interface {
	Recipients() []UserID
}

type PresenceChanged struct {
	RoomID  RoomID      `json:"roomId"`
	UserID  UserID      `json:"userId"`
	Joined  bool        `json:"joined"`
	Present []UserID    `json:"present"`
	Ranked  []RankEntry `json:"ranked"`
}

type OnlineUsersUpdated struct {
	RoomID RoomID      `json:"roomId"`
	Ranked []RankEntry `json:"ranked"`
}

type GiftSent struct {
	RoomID   RoomID    `json:"roomId"`
	Seq      uint64    `json:"seq"`
	From     UserID    `json:"from"`
	To       UserID    `json:"to"`
	Gift     string    `json:"gift"`
	Quantity int64     `json:"quantity"`
	Total    int64     `json:"total"`
	At       time.Time `json:"at"`
}

type FollowChanged struct {
	RoomID    RoomID `json:"roomId,omitempty"`
	Follower  UserID `json:"follower"`
	Followed  UserID `json:"followed"`
	Following bool   `json:"following"`
	Friends   bool   `json:"friends"`
	FansCount int64  `json:"fansCount"`
}

type UserUpdated struct {
	RoomID RoomID `json:"roomId,omitempty"`
	User   User   `json:"user"`
}

type Kicked struct {
	RoomID RoomID `json:"roomId"`
	UserID UserID `json:"userId"`
	By     UserID `json:"by"`
}

type JoinDenied struct {
	RoomID RoomID `json:"roomId"`
	UserID UserID `json:"userId"`
}

type ChatMessage struct {
	RoomID RoomID    `json:"roomId"`
	From   UserID    `json:"from"`
	Text   string    `json:"text"`
	At     time.Time `json:"at"`
}

type StreamEnded struct {
	RoomID   RoomID   `json:"roomId"`
	Audience []UserID `json:"-"`
}

// Ordered events are stamped by the battle coordinator with a sequence
// shared by both rooms. Each carries the full counters, so a room publishes
// them in increasing order and drops one a newer event already superseded.
type Ordered interface {
	Event
	OrderSeq() uint64
}

type PKStarted struct {
	RoomID     RoomID `json:"roomId"`
	OpponentID RoomID `json:"opponentId"`
	Side       Side   `json:"side"`
	Remaining  int    `json:"remaining"`
	ScoreA     int64  `json:"scoreA"`
	ScoreB     int64  `json:"scoreB"`
	Seq        uint64 `json:"battleSeq"`
}

type HeartUpdate struct {
	RoomID  RoomID `json:"roomId"`
	HeartsA int64  `json:"heartsA"`
	HeartsB int64  `json:"heartsB"`
	Seq     uint64 `json:"battleSeq"`
}

type ScoreUpdate struct {
	RoomID RoomID `json:"roomId"`
	ScoreA int64  `json:"scoreA"`
	ScoreB int64  `json:"scoreB"`
	Seq    uint64 `json:"battleSeq"`
}

type PKEnded struct {
	RoomID   RoomID `json:"roomId"`
	ScoreA   int64  `json:"scoreA"`
	ScoreB   int64  `json:"scoreB"`
	HeartsA  int64  `json:"heartsA"`
	HeartsB  int64  `json:"heartsB"`
	Winner   Side   `json:"winner,omitempty"`
	TimedOut bool   `json:"timedOut"`
	Seq      uint64 `json:"battleSeq"`
}

func (PresenceChanged) Kind() EventKind    { return KindPresence }
func (OnlineUsersUpdated) Kind() EventKind { return KindOnlineUsers }
func (GiftSent) Kind() EventKind           { return KindGift }
func (FollowChanged) Kind() EventKind      { return KindFollow }
func (UserUpdated) Kind() EventKind        { return KindUser }
func (Kicked) Kind() EventKind             { return KindKicked }
func (JoinDenied) Kind() EventKind         { return KindJoinDenied }
func (ChatMessage) Kind() EventKind        { return KindChat }
func (StreamEnded) Kind() EventKind        { return KindStreamEnded }
func (PKStarted) Kind() EventKind          { return KindPKStarted }
func (HeartUpdate) Kind() EventKind        { return KindHeart }
func (ScoreUpdate) Kind() EventKind        { return KindScore }
func (PKEnded) Kind() EventKind            { return KindPKEnded }

func (e PresenceChanged) Room() RoomID    { return e.RoomID }
func (e OnlineUsersUpdated) Room() RoomID { return e.RoomID }
func (e GiftSent) Room() RoomID           { return e.RoomID }
func (e FollowChanged) Room() RoomID      { return e.RoomID }
func (e UserUpdated) Room() RoomID        { return e.RoomID }
func (e Kicked) Room() RoomID             { return e.RoomID }
func (e JoinDenied) Room() RoomID         { return e.RoomID }
func (e ChatMessage) Room() RoomID        { return e.RoomID }
func (e StreamEnded) Room() RoomID        { return e.RoomID }
func (e PKStarted) Room() RoomID          { return e.RoomID }
func (e HeartUpdate) Room() RoomID        { return e.RoomID }
func (e ScoreUpdate) Room() RoomID        { return e.RoomID }
func (e PKEnded) Room() RoomID            { return e.RoomID }

func (PresenceChanged) isEvent()    {}
func (OnlineUsersUpdated) isEvent() {}
func (GiftSent) isEvent()           {}
func (FollowChanged) isEvent()      {}
func (UserUpdated) isEvent()        {}
func (Kicked) isEvent()             {}
func (JoinDenied) isEvent()         {}
func (ChatMessage) isEvent()        {}
func (StreamEnded) isEvent()        {}
func (PKStarted) isEvent()          {}
func (HeartUpdate) isEvent()        {}
func (ScoreUpdate) isEvent()        {}
func (PKEnded) isEvent()            {}

func (e StreamEnded) Recipients() []UserID { return e.Audience }

func (e PKStarted) OrderSeq() uint64   { return e.Seq }
func (e HeartUpdate) OrderSeq() uint64 { return e.Seq }
func (e ScoreUpdate) OrderSeq() uint64 { return e.Seq }
func (e PKEnded) OrderSeq() uint64     { return e.Seq }

// Side is a team in a PK battle. A is the room that started the battle.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

func ParseSide(s string) (Side, error) {
	switch s {
	case "A", "a":
		return SideA, nil
	case "B", "b":
		return SideB, nil
	}
	return "", ErrInvalidSide
}
