// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisChannel = "housewarming:changed"

// NewRedisBroker bridges collection change notifications across server
// instances over a redis pub/sub channel. Only the fact that a collection
// changed travels over the wire, each instance reloads from its own store.
func NewRedisBroker(rdb *redis.Client) *RedisBroker {
	return &RedisBroker{
		rdb:    rdb,
		origin: uuid.New(),
	}
}

type RedisBroker struct {
	rdb    *redis.Client
	origin uuid.UUID
}

type changedMsg struct {
	Collection Collection `json:"collection"`
	Origin     uuid.UUID  `json:"origin"`
	TsUnix     int64      `json:"ts_unix"`
}

func (b *RedisBroker) Publish(ctx context.Context, collection Collection) error {
	msg := changedMsg{
		Collection: collection,
		Origin:     b.origin,
		TsUnix:     time.Now().Unix(),
	}

	j, _ := json.Marshal(msg)

	return b.rdb.Publish(ctx, redisChannel, j).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, handler func(Collection)) error {
	sub := b.rdb.Subscribe(ctx, redisChannel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg changedMsg
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil || msg.Collection == "" {
				continue
			}
			// Local subscribers were already woken by the write itself.
			if msg.Origin == b.origin {
				continue
			}
			handler(msg.Collection)
		}
	}
}
