package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type payload struct {
	Size       string  `json:"size"`
	Confidence float64 `json:"confidence"`
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(Options{InMemory: true, TTL: time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestOpen_RequiresTTL(t *testing.T) {
	_, err := Open(Options{InMemory: true})
	assert.Error(t, err)
}

func TestSetGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", payload{Size: "9.5", Confidence: 0.7}))

	var got payload
	ok, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, payload{Size: "9.5", Confidence: 0.7}, got)
}

func TestGet_Miss(t *testing.T) {
	c := newTestCache(t)

	var got payload
	ok, err := c.Get(context.Background(), "absent", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetWithTTL_Expires(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	// Badger TTLs have one-second resolution.
	require.NoError(t, c.SetWithTTL(ctx, "short", payload{Size: "10"}, time.Second))

	assert.Eventually(t, func() bool {
		ok, err := c.Get(ctx, "short", &payload{})
		return err == nil && !ok
	}, 4*time.Second, 100*time.Millisecond)
}

func TestDelete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", payload{}))
	require.NoError(t, c.Delete(ctx, "k"))
	require.NoError(t, c.Delete(ctx, "k"))

	ok, err := c.Get(ctx, "k", &payload{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeletePrefix(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	keys := []string{
		RecommendationKey("user-1", 0, "cat-1", "US"),
		RecommendationKey("user-1", 3, "cat-2", "EU"),
		RecommendationKey("user-10", 0, "cat-1", "US"),
		RecommendationKey("user-2", 0, "cat-1", "US"),
	}
	for _, k := range keys {
		require.NoError(t, c.Set(ctx, k, payload{}))
	}

	n, err := c.DeletePrefix(ctx, UserRecommendationPrefix("user-1"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for i, k := range keys {
		ok, err := c.Get(ctx, k, &payload{})
		require.NoError(t, err)
		assert.Equal(t, i >= 2, ok, "key %s", k)
	}

	n, err = c.DeletePrefix(ctx, UserRecommendationPrefix("nobody"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCancelledContext(t *testing.T) {
	c := newTestCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, c.Set(ctx, "k", payload{}), context.Canceled)
	_, err := c.Get(ctx, "k", &payload{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOnDisk_StopsGCOnClose(t *testing.T) {
	c, err := Open(Options{Path: t.TempDir(), TTL: time.Minute})
	require.NoError(t, err)

	require.NoError(t, c.Set(context.Background(), "k", payload{Size: "8"}))
	require.NoError(t, c.Ping(context.Background()))

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func TestRecommendationKey(t *testing.T) {
	assert.Equal(t, "rec:user-1:4:cat-9:EU", RecommendationKey("user-1", 4, "cat-9", "EU"))
	assert.Equal(t, "rec:user-1:", UserRecommendationPrefix("user-1"))
	assert.Equal(t, "recgen:user-1", UserGenerationKey("user-1"))
}

func TestGeneration_StartsAtZero(t *testing.T) {
	c := newTestCache(t)

	gen, err := c.Generation(context.Background(), UserGenerationKey("user-1"))
	require.NoError(t, err)
	assert.Zero(t, gen)
}

func TestBump(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	key := UserGenerationKey("user-1")

	n, err := c.Bump(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
	n, err = c.Bump(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)

	gen, err := c.Generation(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), gen)

	other, err := c.Generation(ctx, UserGenerationKey("user-2"))
	require.NoError(t, err)
	assert.Zero(t, other)
}

func TestBump_Concurrent(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	key := UserGenerationKey("user-1")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				_, err := c.Bump(ctx, key)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	gen, err := c.Generation(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, uint64(80), gen)
}

func TestGenerationSurvivesUserPrefixDelete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, err := c.Bump(ctx, UserGenerationKey("user-1"))
	require.NoError(t, err)
	_, err = c.DeletePrefix(ctx, UserRecommendationPrefix("user-1"))
	require.NoError(t, err)

	gen, err := c.Generation(ctx, UserGenerationKey("user-1"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)
}

func TestBump_CancelledContext(t *testing.T) {
	c := newTestCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Bump(ctx, UserGenerationKey("user-1"))
	assert.ErrorIs(t, err, context.Canceled)
}
