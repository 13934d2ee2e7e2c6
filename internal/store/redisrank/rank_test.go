package redisrank

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestKeyPrefix(t *testing.T) {
	m := New(nil, "")
	if got := m.Key("r1"); got != "room_contribution:r1" {
		t.Fatalf("key %q", got)
	}
	if got := New(nil, "rank:").Key("r1"); got != "rank:r1" {
		t.Fatalf("custom key %q", got)
	}
}

func TestUnreachableRedisReturnsError(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()
	m := New(rdb, "")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.Incr(ctx, "r1", "u1", 10); err == nil {
		t.Fatal("incr against closed port succeeded")
	}
	if _, err := Dial(ctx, "127.0.0.1:1", "", 0); err == nil {
		t.Fatal("dial against closed port succeeded")
	}
}

// zsetHook answers sorted-set commands from memory instead of the network.
type zsetHook struct {
	sets map[string]map[string]float64
}

func (h *zsetHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *zsetHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (h *zsetHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		args := cmd.Args()
		switch cmd.Name() {
		case "zincrby":
			key, member := args[1].(string), args[3].(string)
			if h.sets[key] == nil {
				h.sets[key] = make(map[string]float64)
			}
			h.sets[key][member] += args[2].(float64)
			cmd.(*redis.FloatCmd).SetVal(h.sets[key][member])
		case "del":
			var n int64
			for _, a := range args[1:] {
				if _, ok := h.sets[a.(string)]; ok {
					delete(h.sets, a.(string))
					n++
				}
			}
			cmd.(*redis.IntCmd).SetVal(n)
		default:
			return next(ctx, cmd)
		}
		return nil
	}
}

func TestIncrAndClearUseRoomKey(t *testing.T) {
	hook := &zsetHook{sets: make(map[string]map[string]float64)}
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer rdb.Close()
	rdb.AddHook(hook)
	m := New(rdb, "")
	ctx := context.Background()

	if err := m.Incr(ctx, "r1", "u1", 10); err != nil {
		t.Fatal(err)
	}
	if err := m.Incr(ctx, "r1", "u1", 5); err != nil {
		t.Fatal(err)
	}
	if err := m.Incr(ctx, "r2", "u2", 1); err != nil {
		t.Fatal(err)
	}
	if got := hook.sets["room_contribution:r1"]["u1"]; got != 15 {
		t.Fatalf("r1 score %v", got)
	}

	if err := m.Clear(ctx, "r1"); err != nil {
		t.Fatal(err)
	}
	if _, ok := hook.sets["room_contribution:r1"]; ok {
		t.Fatal("r1 kept after clear")
	}
	if _, ok := hook.sets["room_contribution:r2"]; !ok {
		t.Fatal("clear touched another room")
	}
}
