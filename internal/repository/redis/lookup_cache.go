package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/njprem/TravelAgency_BackEnd/internal/repository/ports"
)

// NewClient connects and pings before handing the client out.
func NewClient(ctx context.Context, addr, password string) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// LookupCache stores JSON encoded values with a TTL.
type LookupCache struct {
	client goredis.Cmdable
}

var _ ports.LookupCache = (*LookupCache)(nil)

func NewLookupCache(client goredis.Cmdable) *LookupCache {
	return &LookupCache{client: client}
}

func (c *LookupCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *LookupCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}

// NoopCache never stores anything. It stands in when Redis is not configured.
type NoopCache struct{}

var _ ports.LookupCache = NoopCache{}

func (NoopCache) Get(context.Context, string, any) (bool, error) { return false, nil }

func (NoopCache) Set(context.Context, string, any, time.Duration) error { return nil }
