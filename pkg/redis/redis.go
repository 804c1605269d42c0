package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/trouvetonartisan/backend/config"
	"github.com/trouvetonartisan/backend/pkg/logger"
)

// Connect opens a client and checks it with a PING.
func Connect(cfg *config.RedisConfig) (*redis.Client, error) {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return client, nil
}

// incrWindow increments the counter and starts its expiry on the first hit,
// atomically, then reports the remaining lifetime in milliseconds.
var incrWindow = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

// WindowCounter counts hits per key in fixed windows shared by every
// instance connected to the same Redis.
type WindowCounter struct {
	client redis.Scripter
	prefix string
}

func NewWindowCounter(client redis.Scripter, prefix string) *WindowCounter {
	return &WindowCounter{client: client, prefix: prefix}
}

// Increment records a hit and returns the hit count in the current window
// and the time until the window resets.
func (w *WindowCounter) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	res, err := incrWindow.Run(ctx, w.client, []string{w.prefix + key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		logger.Error("Failed to increment rate limit counter", err, map[string]interface{}{
			"key": key,
		})
		return 0, 0, err
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("unexpected rate limit script reply: %v", res)
	}

	resetIn := time.Duration(res[1]) * time.Millisecond
	if resetIn < 0 {
		resetIn = window
	}
	return res[0], resetIn, nil
}
