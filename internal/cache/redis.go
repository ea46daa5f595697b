package cache

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keys. Both are invalidated explicitly on every write that could
// change them; nothing here is allowed to serve stale figures.
const (
	LoyaltyConfigKey = "settings:loyalty_config"
	StatusBoardKey   = "public:status_board"
)

var client *redis.Client

// Init initializes the Redis connection. Redis is optional: when it is not
// reachable every read falls through to Postgres.
func Init() error {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	client = redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// Available reports whether the cache is usable
func Available() bool {
	return client != nil
}

// GetJSON loads a cached value into dest. Returns false on miss or when the
// cache is unavailable.
func GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if client == nil {
		return false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

// SetJSON stores a value with a TTL. Failures are ignored: the cache is an
// optimization, never the source of truth.
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if client == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// Invalidate removes keys after a write so the next read recomputes
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil {
		return
	}
	client.Del(ctx, keys...)
}
