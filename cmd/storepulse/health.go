package main

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// redisPinger adapts the redis client to app.Pinger.
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
