package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"crimewatch/internal/domain"
)

// SignalCache keeps the active-signal list as one JSON blob. Push events and
// lifecycle writes invalidate it, so readers between broadcasts hit redis
// instead of postgres.
type SignalCache struct {
	client *goredis.Client
	key    string
	ttl    time.Duration
}

func NewSignalCache(r *Redis, ttl time.Duration) *SignalCache {
	return &SignalCache{
		client: r.Client,
		key:    "emergency:active",
		ttl:    ttl,
	}
}

// GetActive returns the cached list and whether the cache held one.
func (c *SignalCache) GetActive(ctx context.Context) ([]domain.EmergencySignal, bool, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var signals []domain.EmergencySignal
	if err := json.Unmarshal(data, &signals); err != nil {
		return nil, false, err
	}
	return signals, true, nil
}

func (c *SignalCache) SetActive(ctx context.Context, signals []domain.EmergencySignal) error {
	b, err := json.Marshal(signals)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, b, c.ttl).Err()
}

func (c *SignalCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
