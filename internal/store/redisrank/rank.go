// Package redisrank mirrors room contribution totals into Redis sorted sets
// so rankings can be read by other processes.
package redisrank

import (
	"context"
	"fmt"

	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "room_contribution:"

type Mirror struct {
	rdb    redis.UniversalClient
	prefix string
}

func New(rdb redis.UniversalClient, prefix string) *Mirror {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Mirror{rdb: rdb, prefix: prefix}
}

// Dial connects to addr and checks the connection with PING.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

func (m *Mirror) Key(room domain.RoomID) string { return m.prefix + string(room) }

func (m *Mirror) Incr(ctx context.Context, room domain.RoomID, user domain.UserID, amount int64) error {
	return m.rdb.ZIncrBy(ctx, m.Key(room), float64(amount), string(user)).Err()
}

func (m *Mirror) Clear(ctx context.Context, room domain.RoomID) error {
	return m.rdb.Del(ctx, m.Key(room)).Err()
}
