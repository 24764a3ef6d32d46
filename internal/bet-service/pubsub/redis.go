package pubsub

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/solbet/solbet-platform/pkg/contracts/events"
)

// RedisBroadcaster publica atualizações de pool no canal Redis consumido pelo WebSocket
type RedisBroadcaster struct {
	r       *redis.Client
	channel string
}

func NewRedisBroadcaster(r *redis.Client, channel string) *RedisBroadcaster {
	return &RedisBroadcaster{r: r, channel: channel}
}

func (b *RedisBroadcaster) PublishPool(ctx context.Context, u events.PoolUpdate) error {
	payload, err := json.Marshal(u)
	if err != nil {
		return errors.Wrap(err, "marshal pool update")
	}
	return errors.Wrap(b.r.Publish(ctx, b.channel, payload).Err(), "redis publish")
}
