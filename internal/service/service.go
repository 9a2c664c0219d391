package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/bullbear/internal/observability"
	"github.com/Alias1177/bullbear/models"
)

// Evaluator runs one market state classification.
type Evaluator interface {
	Evaluate(ctx context.Context) (*models.EvaluationResult, error)
}

// Store persists evaluation results. Persistence failures never fail a
// refresh; the result stays served from memory.
type Store interface {
	SaveResult(ctx context.Context, res *models.EvaluationResult) error
}

// Notifier is told when the classified state changes between evaluations.
type Notifier interface {
	NotifyStateChange(prev, curr *models.EvaluationResult) error
}

// Service owns the evaluation lifecycle: refreshing on a schedule or on
// demand, keeping the latest result in memory, persisting it and alerting on
// state transitions. Store, Notifier and Metrics are optional.
type Service struct {
	evaluator Evaluator
	store     Store
	notifier  Notifier
	metrics   *observability.Metrics
	logger    zerolog.Logger

	mu     sync.RWMutex
	latest *models.EvaluationResult
}

// New creates a Service around the evaluator. store, notifier and metrics may
// each be nil.
func New(evaluator Evaluator, store Store, notifier Notifier, metrics *observability.Metrics) *Service {
	return &Service{
		evaluator: evaluator,
		store:     store,
		notifier:  notifier,
		metrics:   metrics,
		logger:    log.With().Str("component", "service").Logger(),
	}
}

// Seed installs a previously persisted result as the served state until the
// first refresh completes. It does nothing once a result is present.
func (s *Service) Seed(res *models.EvaluationResult) {
	if res == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		s.latest = res
	}
}

// Latest returns the most recent evaluation, or nil before the first
// successful refresh.
func (s *Service) Latest() *models.EvaluationResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Refresh runs one evaluation and, on success, stores it, updates metrics and
// alerts if the state changed.
func (s *Service) Refresh(ctx context.Context) (*models.EvaluationResult, error) {
	start := time.Now()
	res, err := s.evaluator.Evaluate(ctx)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ObserveError()
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveEvaluation(res, time.Since(start))
	}

	s.mu.Lock()
	prev := s.latest
	s.latest = res
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.SaveResult(ctx, res); err != nil {
			s.logger.Warn().Err(err).Msg("failed to persist evaluation")
		}
	}

	if s.notifier != nil && (prev == nil || prev.State != res.State) {
		if err := s.notifier.NotifyStateChange(prev, res); err != nil {
			s.logger.Warn().Err(err).Msg("failed to send state change alert")
		}
	}

	return res, nil
}

// Run refreshes immediately and then on every tick until ctx is cancelled.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	if _, err := s.Refresh(ctx); err != nil {
		s.logger.Error().Err(err).Msg("initial evaluation failed")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil {
				s.logger.Error().Err(err).Msg("scheduled evaluation failed")
			}
		}
	}
}
