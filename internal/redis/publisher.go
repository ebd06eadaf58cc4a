package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// Publisher fans events out to a Redis pub/sub channel. The presence store
// publishes status transitions through it; a second service instance would
// subscribe to the same channels to learn about users connected elsewhere.
type Publisher struct {
	client *goredis.Client
}

func NewPublisher(client *goredis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish sends payload to the named channel. Subscribers may or may not
// exist; zero receivers is not an error.
func (p *Publisher) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}
