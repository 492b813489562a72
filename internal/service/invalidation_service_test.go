package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/colegio-api/pkg/config"
)

func TestInvalidationServiceDropsMatchingKeys(t *testing.T) {
	repo := newMemoryCache()
	metrics := NewMetricsService()
	cache := NewCacheService(repo, metrics, time.Minute, nil, true)
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "report:4", 1, 0))
	require.NoError(t, cache.Set(ctx, "report:5", 1, 0))
	require.NoError(t, cache.Set(ctx, "dashboard:admin", 1, 0))

	svc := NewInvalidationService(cache, metrics, config.InvalidationConfig{Workers: 1, RetryDelay: time.Millisecond}, nil)
	svc.Start(ctx)
	svc.Invalidate("report:4", "dashboard:*")
	svc.Stop()

	assert.False(t, repo.has("report:4"))
	assert.False(t, repo.has("dashboard:admin"))
	assert.True(t, repo.has("report:5"))
	assert.Equal(t, []string{"report:4", "dashboard:*"}, repo.patterns())
	assert.EqualValues(t, 1, svc.Stats().Processed)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.invalidations.WithLabelValues("ok")))
}

func TestInvalidationServiceRunsInlineWhenStopped(t *testing.T) {
	repo := newMemoryCache()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	require.NoError(t, cache.Set(context.Background(), "timetable:1°:1", 1, 0))

	svc := NewInvalidationService(cache, nil, config.InvalidationConfig{Workers: 1}, nil)
	svc.Invalidate("timetable:*")

	assert.False(t, repo.has("timetable:1°:1"))
}

func TestInvalidationServiceSkipsDisabledCache(t *testing.T) {
	repo := newMemoryCache()
	svc := NewInvalidationService(NewCacheService(repo, nil, 0, nil, false), nil, config.InvalidationConfig{Workers: 1}, nil)
	svc.Start(context.Background())
	svc.Invalidate("report:*")
	svc.Stop()

	assert.Empty(t, repo.patterns())

	var none *InvalidationService
	assert.NotPanics(t, func() { none.Invalidate("x") })
}
