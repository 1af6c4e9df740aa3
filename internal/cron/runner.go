// Package cron fires sync runs: once at startup, on the configured schedule,
// and on demand from the admin API. Every trigger goes through the
// orchestrator's run guard, so overlapping triggers are dropped.
package cron

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"roster-sync/internal/config"
	"roster-sync/internal/constants"
	"roster-sync/internal/domain"
	"roster-sync/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
)

type Runner struct {
	orch     *service.Orchestrator
	cron     *cron.Cron
	schedule string
	startup  bool
	logger   zerolog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
}

func NewRunner(orch *service.Orchestrator, cfg *config.Config, logger zerolog.Logger) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		orch:     orch,
		cron:     cron.New(),
		schedule: cfg.SyncSchedule,
		startup:  cfg.SyncOnStartup,
		logger:   logger.With().Str("component", "cron").Logger(),
		ctx:      ctx,
		cancel:   cancel,
		group:    new(errgroup.Group),
	}
}

// Trigger admits a run and executes it in the background. It returns the
// run id, or service.ErrRunCollision when a run is already active.
func (r *Runner) Trigger(mode domain.SyncMode) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ctx.Err() != nil {
		return "", errors.New("runner is stopped")
	}

	run, err := r.orch.Admit(r.ctx, mode)
	if err != nil {
		return "", err
	}

	r.group.Go(func() error {
		if _, err := r.orch.Execute(r.ctx, run); err != nil {
			r.logger.Error().Err(err).Str("run_id", run.ID).Msg("sync run failed")
		}
		return nil
	})
	return run.ID, nil
}

func (r *Runner) fire(source string) {
	id, err := r.Trigger(domain.ModeFull)
	switch {
	case errors.Is(err, service.ErrRunCollision):
		r.logger.Info().Str("source", source).Msg("previous sync still running, skipping")
	case err != nil:
		r.logger.Error().Err(err).Str("source", source).Msg("failed to start sync run")
	default:
		r.logger.Info().Str("source", source).Str("run_id", id).Msg("sync run triggered")
	}
}

func (r *Runner) Start() error {
	if _, err := r.cron.AddFunc(r.schedule, func() { r.fire("schedule") }); err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", r.schedule, err)
	}
	r.cron.Start()
	r.logger.Info().Str("schedule", r.schedule).Bool("startup_run", r.startup).Msg("sync scheduler started")

	if r.startup {
		r.fire("startup")
	}
	return nil
}

// Stop halts the schedule, cancels any active run and waits for it to wind
// down, up to ctx.
func (r *Runner) Stop(ctx context.Context) error {
	cronCtx := r.cron.Stop()

	r.mu.Lock()
	r.cancel()
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		<-cronCtx.Done()
		r.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info().Msg("sync scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("sync scheduler did not stop in time: %w", ctx.Err())
	}
}

// Register ties the runner to the fx lifecycle.
func Register(lc fx.Lifecycle, r *Runner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return r.Start()
		},
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, constants.CronStopTimeout)
			defer cancel()
			return r.Stop(stopCtx)
		},
	})
}
