package booking

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisBuzzerGate lets one buzzer per booking through per interval, shared by
// every API instance.
type RedisBuzzerGate struct {
	client *redis.Client
}

func NewRedisBuzzerGate(client *redis.Client) *RedisBuzzerGate {
	return &RedisBuzzerGate{client: client}
}

func (g *RedisBuzzerGate) Allow(ctx context.Context, bookingID string, interval time.Duration) (bool, error) {
	// Slightly shorter than the interval so a client on a steady cadence is
	// never collapsed by clock jitter.
	ttl := interval - interval/10
	if ttl <= 0 {
		ttl = interval
	}
	return g.client.SetNX(ctx, "buzzer:"+bookingID, time.Now().Unix(), ttl).Result()
}
