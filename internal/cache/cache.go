// Package cache keeps public catalog reads out of the database when a Redis
// server is configured.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

type Cache interface {
	// Get decodes the cached value into dst and reports whether it was present.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	// Flush drops every key written through this cache.
	Flush(ctx context.Context) error
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error) { return false, nil }
func (Noop) Set(context.Context, string, any) error         { return nil }
func (Noop) Flush(context.Context) error                    { return nil }

const (
	keyPrefix = "basket:catalog:"
	keySet    = "basket:catalog_keys"
)

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects and pings the server before returning.
func NewRedis(addr string, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", addr, err)
	}
	log.Printf("[cache] connected to redis at %s", addr)
	return &Redis{client: client, ttl: ttl}, nil
}

func (r *Redis) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) Set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, keyPrefix+key, b, r.ttl)
	pipe.SAdd(ctx, keySet, keyPrefix+key)
	_, err = pipe.Exec(ctx)
	return err
}

// flushScript reads and clears the tracking set in one step, so a Set racing
// with Flush either lands before it and is dropped, or after it and is tracked.
var flushScript = redis.NewScript(`
local keys = redis.call('SMEMBERS', KEYS[1])
for i = 1, #keys, 500 do
  redis.call('DEL', unpack(keys, i, math.min(i + 499, #keys)))
end
redis.call('DEL', KEYS[1])
return #keys
`)

func (r *Redis) Flush(ctx context.Context) error {
	err := flushScript.Run(ctx, r.client, []string{keySet}).Err()
	if err == redis.Nil {
		return nil
	}
	return err
}

func (r *Redis) Close() error {
	return r.client.Close()
}
