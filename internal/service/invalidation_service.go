package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/colegio-api/pkg/config"
	"github.com/noah-isme/colegio-api/pkg/jobs"
)

const invalidationJobType = "cache.invalidate"

// CacheInvalidator drops derived views after a mutation.
type CacheInvalidator interface {
	Invalidate(patterns ...string)
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(...string) {}

// InvalidationService deletes stale cache entries on a background queue so
// mutations never wait on Redis.
type InvalidationService struct {
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	queue   *jobs.Queue
}

// NewInvalidationService wires the worker queue. Call Start before use.
func NewInvalidationService(cache *CacheService, metrics *MetricsService, cfg config.InvalidationConfig, logger *zap.Logger) *InvalidationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &InvalidationService{cache: cache, metrics: metrics, logger: logger}
	s.queue = jobs.NewQueue("cache-invalidation", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the workers.
func (s *InvalidationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains pending jobs and stops the workers.
func (s *InvalidationService) Stop() {
	s.queue.Stop()
}

// Stats exposes the queue counters.
func (s *InvalidationService) Stats() jobs.Stats {
	return s.queue.Stats()
}

// Invalidate schedules removal of every key matching patterns. When the
// queue rejects the job the patterns are dropped inline instead.
func (s *InvalidationService) Invalidate(patterns ...string) {
	if s == nil || !s.cache.Enabled() || len(patterns) == 0 {
		return
	}
	job := jobs.Job{ID: uuid.NewString(), Type: invalidationJobType, Payload: patterns}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("invalidation enqueue failed, running inline", zap.Strings("patterns", patterns), zap.Error(err))
		_ = s.handle(context.Background(), job)
	}
}

func (s *InvalidationService) handle(ctx context.Context, job jobs.Job) error {
	patterns, ok := job.Payload.([]string)
	if !ok {
		s.logger.Error("invalid invalidation payload", zap.String("job_id", job.ID))
		return nil
	}
	var errs []error
	for _, pattern := range patterns {
		if err := s.cache.Invalidate(ctx, pattern); err != nil {
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)
	s.metrics.RecordInvalidation(err == nil)
	if err == nil {
		s.logger.Debug("cache invalidated", zap.String("patterns", strings.Join(patterns, ",")))
	}
	return err
}
