package notify

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// RedisPublisher sends events to a Redis pub/sub channel as JSON envelopes.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		channel: channel,
	}
}

func (p *RedisPublisher) Publish(ctx context.Context, event string, payload any) error {
	body, err := encodeEnvelope(event, payload)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, body).Err()
}
