package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheVersionKey = "kpi:version"
	bumpChannel     = "kpi.bump"
)

// Observer receives cache and compute measurements.
type Observer interface {
	CacheLookup(hit bool)
	ObserveCompute(d time.Duration)
}

// Cache wraps Redis based caching with versioning controls.
type Cache struct {
	client   *redis.Client
	ttl      time.Duration
	observer Observer
	logger   *slog.Logger
}

// NewCache instantiates the cache helper. observer may be nil.
func NewCache(client *redis.Client, ttl time.Duration, observer Observer) *Cache {
	return &Cache{client: client, ttl: ttl, observer: observer, logger: slog.Default()}
}

// WithLogger sets the logger used for cache write failures.
func (c *Cache) WithLogger(logger *slog.Logger) *Cache {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, cacheVersionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", joined, ver), nil
}

// FetchJSON loads a cached value into dest or populates it using the loader.
// A failed cache write is logged and the loaded value is still returned.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c == nil || c.client == nil {
		return load(ctx, dest, loader, nil)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		c.lookup(true)
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return err
	}
	c.lookup(false)
	return load(ctx, dest, loader, func(raw []byte) {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("kpi cache store failed", slog.String("key", key), slog.Any("error", err))
		}
	})
}

// Bump invalidates the cache by incrementing the global version and publishing an event.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// ListenForInvalidation follows version bumps published on channel, so a
// replica Redis picks up bumps made against another instance. It returns once
// the subscription is established.
func (c *Cache) ListenForInvalidation(ctx context.Context, channel string) error {
	if c == nil || c.client == nil {
		return nil
	}
	if channel == "" {
		channel = bumpChannel
	}
	pubsub := c.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("cache: subscribe %s: %w", channel, err)
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if ver, err := strconv.ParseInt(msg.Payload, 10, 64); err == nil {
					c.raiseVersion(ctx, ver)
					continue
				}
				_ = c.client.Incr(ctx, cacheVersionKey).Err()
			}
		}
	}()
	return nil
}

// raiseVersion moves the version forward to ver, never backwards.
func (c *Cache) raiseVersion(ctx context.Context, ver int64) {
	current, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err == nil && current >= ver {
		return
	}
	_ = c.client.Set(ctx, cacheVersionKey, ver, 0).Err()
}

func (c *Cache) lookup(hit bool) {
	if c.observer != nil {
		c.observer.CacheLookup(hit)
	}
}

func load(ctx context.Context, dest any, loader func(context.Context) (any, error), store func([]byte)) error {
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if store != nil {
		store(raw)
	}
	return json.Unmarshal(raw, dest)
}
