package dashboard

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute, nil), mr, client
}

func TestCacheVersionedKeys(t *testing.T) {
	cache, _, _ := newTestCache(t)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "kpi", "s1")
	require.NoError(t, err)
	assert.Equal(t, "kpi:s1:v1", key)

	require.NoError(t, cache.Bump(ctx))
	key, err = cache.BuildKey(ctx, "kpi", "s1")
	require.NoError(t, err)
	assert.Equal(t, "kpi:s1:v2", key)
}

func TestCacheFetchJSONStoresWithTTL(t *testing.T) {
	cache, mr, _ := newTestCache(t)
	ctx := context.Background()
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return map[string]int{"n": 7}, nil
	}

	var got map[string]int
	require.NoError(t, cache.FetchJSON(ctx, "k", &got, loader))
	require.NoError(t, cache.FetchJSON(ctx, "k", &got, loader))
	assert.Equal(t, 7, got["n"])
	assert.Equal(t, 1, calls)
	assert.Equal(t, time.Minute, mr.TTL("k"))

	mr.FastForward(2 * time.Minute)
	require.NoError(t, cache.FetchJSON(ctx, "k", &got, loader))
	assert.Equal(t, 2, calls)
}

func TestCacheFetchJSONLoaderError(t *testing.T) {
	cache, mr, _ := newTestCache(t)
	boom := errors.New("boom")

	var got int
	err := cache.FetchJSON(context.Background(), "k", &got, func(context.Context) (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}

// rejectWrites fails every SET the client sends, as a read-only replica would.
type rejectWrites struct{}

func (rejectWrites) DialHook(next redis.DialHook) redis.DialHook { return next }

func (rejectWrites) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if cmd.Name() == "set" {
			err := errors.New("READONLY You can't write against a read only replica.")
			cmd.SetErr(err)
			return err
		}
		return next(ctx, cmd)
	}
}

func (rejectWrites) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestCacheFetchJSONReturnsValueWhenStoreFails(t *testing.T) {
	cache, mr, client := newTestCache(t)
	client.AddHook(rejectWrites{})
	var logs bytes.Buffer
	cache.WithLogger(slog.New(slog.NewTextHandler(&logs, nil)))

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return map[string]int{"n": 7}, nil
	}

	var got map[string]int
	require.NoError(t, cache.FetchJSON(context.Background(), "k", &got, loader))
	assert.Equal(t, 7, got["n"])
	assert.False(t, mr.Exists("k"))
	assert.Contains(t, logs.String(), "kpi cache store failed")

	require.NoError(t, cache.FetchJSON(context.Background(), "k", &got, loader))
	assert.Equal(t, 2, calls)
}

func TestNilCachePassesThrough(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a:b", key)
	assert.NoError(t, cache.Bump(ctx))

	var got string
	require.NoError(t, cache.FetchJSON(ctx, key, &got, func(context.Context) (any, error) { return "x", nil }))
	assert.Equal(t, "x", got)
}

func TestListenForInvalidationFollowsPublishedVersion(t *testing.T) {
	cache, _, client := newTestCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := cache.Version(ctx)
	require.NoError(t, err)
	require.NoError(t, cache.ListenForInvalidation(ctx, "kpi.test"))
	require.NoError(t, client.Publish(ctx, "kpi.test", "9").Err())

	assert.Eventually(t, func() bool {
		ver, err := cache.Version(ctx)
		return err == nil && ver == 9
	}, time.Second, 10*time.Millisecond)
}
