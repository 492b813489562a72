package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedBuildsOnceThenHits(t *testing.T) {
	metrics := NewMetricsService()
	cache := NewCacheService(newMemoryCache(), metrics, time.Minute, nil, true)
	builds := 0
	build := func() ([]string, error) {
		builds++
		return []string{"a", "b"}, nil
	}

	value, hit, err := cached(context.Background(), cache, "k", build)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []string{"a", "b"}, value)

	value, hit, err = cached(context.Background(), cache, "k", build)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"a", "b"}, value)
	assert.Equal(t, 1, builds)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("miss")))
}

func TestCachedDegradesOnRepositoryError(t *testing.T) {
	repo := newMemoryCache()
	repo.getErr = errors.New("connection refused")
	cache := NewCacheService(repo, nil, 0, nil, true)

	value, hit, err := cached(context.Background(), cache, "k", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 7, value)
}

func TestCachedDoesNotStoreBuildErrors(t *testing.T) {
	repo := newMemoryCache()
	cache := NewCacheService(repo, nil, 0, nil, true)
	boom := errors.New("boom")

	_, _, err := cached(context.Background(), cache, "k", func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, repo.has("k"))
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCache()
	cache := NewCacheService(repo, nil, 0, nil, false)
	assert.False(t, cache.Enabled())

	require.NoError(t, cache.Set(context.Background(), "k", 1, 0))
	assert.False(t, repo.has("k"))

	var dest int
	hit, err := cache.Get(context.Background(), "k", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
	require.NoError(t, cache.Invalidate(context.Background(), "*"))
	assert.Empty(t, repo.patterns())

	var nilCache *CacheService
	assert.False(t, nilCache.Enabled())
}
