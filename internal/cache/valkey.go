package cache

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// ValkeyClient caches rendered catalog listings. The value is the JSON the
// handler would produce, stored opaque so a hit skips both the database and
// re-marshalling.
type ValkeyClient struct {
	client *redis.Client
	ttl    time.Duration
}

func NewValkeyClient() (*ValkeyClient, error) {
	addr := os.Getenv("VALKEY_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	password := os.Getenv("VALKEY_PASSWORD")

	ttl := 30 * time.Second
	if raw := os.Getenv("VALKEY_EVENTS_TTL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			ttl = parsed
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &ValkeyClient{client: rdb, ttl: ttl}, nil
}

// GetEventsList returns the cached listing for the key, or (nil, nil) on a
// miss.
func (v *ValkeyClient) GetEventsList(ctx context.Context, key string) ([]byte, error) {
	raw, err := v.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}
	return raw, nil
}

func (v *ValkeyClient) SetEventsList(ctx context.Context, key string, payload []byte) error {
	return v.client.Set(ctx, key, payload, v.ttl).Err()
}

// InvalidateEvents drops every cached listing page after a catalog write.
func (v *ValkeyClient) InvalidateEvents(ctx context.Context) error {
	iter := v.client.Scan(ctx, 0, "events:list:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return v.client.Del(ctx, keys...).Err()
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
