package page

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type (
	// Scheduler periodically drives a full update pass over the registry.
	Scheduler struct {
		l        *zap.Logger
		registry *Registry
		fetcher  Fetcher
		tempDir  string
		interval time.Duration
		passes   chan chan struct{}
	}
	SchedulerOption func(*Scheduler)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func NewScheduler(l *zap.Logger, registry *Registry, fetcher Fetcher, opts ...SchedulerOption) *Scheduler {
	inst := &Scheduler{
		l:        l.Named("scheduler"),
		registry: registry,
		fetcher:  fetcher,
		tempDir:  "./temp",
		interval: 5 * time.Minute,
		passes:   make(chan chan struct{}),
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func SchedulerWithInterval(v time.Duration) SchedulerOption {
	return func(o *Scheduler) {
		o.interval = v
	}
}

func SchedulerWithTempDir(v string) SchedulerOption {
	return func(o *Scheduler) {
		o.tempDir = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Start runs update passes until ctx is canceled. The first pass starts
// immediately, further ones follow the configured interval. A pass already in
// progress runs to completion after cancellation.
func (s *Scheduler) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.updateRoutine(gCtx)
	})
	g.Go(func() error {
		return s.pollRoutine(gCtx)
	})

	return g.Wait()
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (s *Scheduler) updateRoutine(ctx context.Context) error {
	l := s.l.Named("routine.update")
	for {
		select {
		case <-ctx.Done():
			l.Debug("routine canceled", zap.Error(ctx.Err()))
			return nil
		case done := <-s.passes:
			start := time.Now()
			l := l.With(zap.String("run_id", uuid.New().String()))

			l.Info("update pass started")
			s.registry.UpdateAll(context.WithoutCancel(ctx), s.fetcher, s.tempDir)
			l.Info("update pass finished", zap.Duration("duration", time.Since(start)))

			done <- struct{}{}
		}
	}
}

func (s *Scheduler) pollRoutine(ctx context.Context) error {
	l := s.l.Named("routine.poll")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.trigger(ctx)
	for {
		select {
		case <-ctx.Done():
			l.Debug("routine canceled", zap.Error(ctx.Err()))
			return nil
		case <-ticker.C:
			s.trigger(ctx)
		}
	}
}

func (s *Scheduler) trigger(ctx context.Context) {
	done := make(chan struct{}, 1)
	select {
	case s.passes <- done:
		<-done
	case <-ctx.Done():
	}
}
