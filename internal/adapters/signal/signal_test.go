package signal

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/LiveRoom/internal/app/orch"
	"github.com/dkeye/LiveRoom/internal/app/pk"
	"github.com/dkeye/LiveRoom/internal/auth"
	"github.com/dkeye/LiveRoom/internal/core"
	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/dkeye/LiveRoom/internal/store/memory"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

type wsEnv struct {
	t     *testing.T
	ctx   context.Context
	o     *orch.Orchestrator
	authn *auth.Authenticator
	url   string
}

func newWSEnv(t *testing.T) *wsEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	o := orch.New(ctx, orch.Setup{
		Users:          memory.NewUsers(),
		Follows:        memory.NewFollows(),
		Journal:        memory.NewJournal(),
		Catalog:        core.NewCatalog(core.DefaultGifts(), "Fan Club"),
		Levels:         core.DefaultLevels(),
		CashPerEarning: decimal.RequireFromString("0.01"),
		PK:             pk.Config{Duration: pk.DefaultDuration},
		OutboxSize:     16,
		SlowTolerance:  8,
	})
	authn := auth.NewAuthenticator("secret", time.Hour)
	ctl := NewController(o, Options{PingPeriod: 5 * time.Second})

	r := gin.New()
	r.Use(sessions.Sessions("test", cookie.NewStore([]byte("k"))))
	r.GET("/ws", authn.Middleware(), func(c *gin.Context) { ctl.Handle(ctx, c) })
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &wsEnv{t: t, ctx: ctx, o: o, authn: authn, url: "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"}
}

func (e *wsEnv) user(name string, diamonds int64) domain.UserID {
	e.t.Helper()
	u, err := e.o.RegisterUser(e.ctx, name, diamonds)
	if err != nil {
		e.t.Fatal(err)
	}
	return u.ID
}

func (e *wsEnv) dial(uid domain.UserID) *websocket.Conn {
	e.t.Helper()
	tok, _, err := e.authn.Issue(uid)
	if err != nil {
		e.t.Fatal(err)
	}
	ws, _, err := websocket.DefaultDialer.Dial(e.url+"?token="+tok, nil)
	if err != nil {
		e.t.Fatal(err)
	}
	e.t.Cleanup(func() { _ = ws.Close() })
	return ws
}

// await reads frames until one of type typ arrives.
func await(t *testing.T, ws *websocket.Conn, typ string) map[string]any {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatal(err)
		}
		if m["type"] == typ {
			return m
		}
	}
}

func send(t *testing.T, ws *websocket.Conn, v any) {
	t.Helper()
	if err := ws.WriteJSON(v); err != nil {
		t.Fatal(err)
	}
}

func TestJoinChatAndPing(t *testing.T) {
	e := newWSEnv(t)
	host := e.user("host", 0)
	viewer := e.user("viewer", 0)
	room, err := e.o.StartStream(e.ctx, host, "live")
	if err != nil {
		t.Fatal(err)
	}
	roomID := string(room.Room().ID)

	ws := e.dial(viewer)
	send(t, ws, map[string]any{"type": "ping"})
	await(t, ws, "pong")

	send(t, ws, map[string]any{"type": "join", "room": roomID})
	state := await(t, ws, "room_state")
	if state["room"] != roomID || len(state["online"].([]any)) != 2 {
		t.Fatalf("room_state %v", state)
	}

	send(t, ws, map[string]any{"type": "chat", "text": "hello"})
	msg := await(t, ws, string(domain.KindChat))
	data := msg["data"].(map[string]any)
	if data["text"] != "hello" {
		t.Fatalf("chat %v", msg)
	}

	send(t, ws, map[string]any{"type": "leave"})
	await(t, ws, "left")
	var present bool
	room.View(func(s *core.RoomState) { present = s.IsPresent(viewer) })
	if present {
		t.Fatal("viewer still present after leave")
	}
}

func TestKickIsPushedAndAcked(t *testing.T) {
	e := newWSEnv(t)
	host := e.user("host", 0)
	viewer := e.user("viewer", 0)
	room, err := e.o.StartStream(e.ctx, host, "live")
	if err != nil {
		t.Fatal(err)
	}
	roomID := room.Room().ID

	ws := e.dial(viewer)
	send(t, ws, map[string]any{"type": "join", "room": string(roomID)})
	await(t, ws, "room_state")

	if err := e.o.Kick(host, viewer, roomID); err != nil {
		t.Fatal(err)
	}
	kicked := await(t, ws, string(domain.KindKicked))
	seq, ok := kicked["seq"].(float64)
	if !ok || seq == 0 {
		t.Fatalf("kicked without seq: %v", kicked)
	}
	send(t, ws, map[string]any{"type": "ack", "seq": seq})

	send(t, ws, map[string]any{"type": "join", "room": string(roomID)})
	errMsg := await(t, ws, "error")
	if errMsg["error"] != domain.ErrJoinDenied.Error() {
		t.Fatalf("rejoin %v", errMsg)
	}
}

func TestDisconnectLeavesRoom(t *testing.T) {
	e := newWSEnv(t)
	host := e.user("host", 0)
	viewer := e.user("viewer", 0)
	room, err := e.o.StartStream(e.ctx, host, "live")
	if err != nil {
		t.Fatal(err)
	}

	ws := e.dial(viewer)
	send(t, ws, map[string]any{"type": "join", "room": string(room.Room().ID)})
	await(t, ws, "room_state")
	_ = ws.Close()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if room.MemberCount() == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("member count %d after disconnect", room.MemberCount())
}

func TestUnknownTypeAndUnauthenticated(t *testing.T) {
	e := newWSEnv(t)
	ws := e.dial(e.user("alice", 0))
	send(t, ws, map[string]any{"type": "dance"})
	if m := await(t, ws, "error"); m["error"] != "unknown_type" {
		t.Fatalf("got %v", m)
	}

	if _, resp, err := websocket.DefaultDialer.Dial(e.url, nil); err == nil {
		t.Fatal("upgrade without token succeeded")
	} else if resp == nil || resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %v", resp)
	}
}
