package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Faarae/dashboard-SmartEcoBin/config"

	"github.com/redis/go-redis/v9"
)

const (
	pingAttempts   = 5
	pingRetryDelay = 2 * time.Second
)

// LiveFeed mirrors the render loop into Redis: every message goes to a
// pub/sub channel and the latest view is cached under a key. Without a Redis
// URL every method is a no-op.
type LiveFeed struct {
	client  *redis.Client
	channel string
	key     string
	ttl     time.Duration
	log     *slog.Logger
}

// NewLiveFeed always returns a usable feed. On error the feed is disabled.
func NewLiveFeed(ctx context.Context, cfg config.RedisConfig, ttl time.Duration, log *slog.Logger) (*LiveFeed, error) {
	feed := &LiveFeed{channel: cfg.Channel, key: cfg.Key, ttl: ttl, log: log}
	if cfg.URL == "" {
		return feed, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return feed, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	var lastErr error
	for i := 0; i < pingAttempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		lastErr = client.Ping(pingCtx).Err()
		cancel()
		if lastErr == nil {
			feed.client = client
			log.Info("redis live feed connected", "addr", opts.Addr, "channel", cfg.Channel)
			return feed, nil
		}
		log.Warn("redis ping failed", "attempt", i+1, "of", pingAttempts, "err", lastErr)

		select {
		case <-ctx.Done():
			client.Close()
			return feed, ctx.Err()
		case <-time.After(pingRetryDelay):
		}
	}

	client.Close()
	return feed, fmt.Errorf("redis ping failed after %d attempts: %w", pingAttempts, lastErr)
}

func (f *LiveFeed) Available() bool {
	return f != nil && f.client != nil
}

func (f *LiveFeed) Publish(ctx context.Context, m Message) error {
	if !f.Available() {
		return nil
	}

	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := f.client.Publish(ctx, f.channel, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", f.channel, err)
	}

	if m.Type != MessageView {
		return nil
	}
	view, err := json.Marshal(m.Data)
	if err != nil {
		return err
	}
	return f.client.Set(ctx, f.key, view, f.ttl).Err()
}

// Clear drops the cached view.
func (f *LiveFeed) Clear(ctx context.Context) error {
	if !f.Available() {
		return nil
	}
	return f.client.Del(ctx, f.key).Err()
}

func (f *LiveFeed) Close() error {
	if !f.Available() {
		return nil
	}
	return f.client.Close()
}
