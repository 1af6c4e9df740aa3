package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"roster-sync/internal/domain"
	"roster-sync/internal/metrics"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

var ErrRunCollision = errors.New("sync run already in progress")

// Run is an admitted sync run that holds the run guard until executed.
type Run struct {
	ID        string
	Mode      domain.SyncMode
	StartedAt time.Time
}

type Orchestrator struct {
	accounts  AccountStore
	syncer    *AccountSyncer
	scheduler *BatchScheduler
	guard     RunGuard
	metrics   *metrics.Metrics
	logger    zerolog.Logger

	mu   sync.RWMutex
	last *domain.RunReport
}

func NewOrchestrator(accounts AccountStore, syncer *AccountSyncer, scheduler *BatchScheduler, guard RunGuard, m *metrics.Metrics, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		accounts:  accounts,
		syncer:    syncer,
		scheduler: scheduler,
		guard:     guard,
		metrics:   m,
		logger:    logger.With().Str("component", "orchestrator").Logger(),
	}
}

// RunSync admits and executes one run, blocking until it finishes.
func (o *Orchestrator) RunSync(ctx context.Context, mode domain.SyncMode) (*domain.RunReport, error) {
	run, err := o.Admit(ctx, mode)
	if err != nil {
		return nil, err
	}
	return o.Execute(ctx, run)
}

// Admit takes the run guard. It returns ErrRunCollision without side effects
// when another run holds it. The caller must pass the run to Execute.
func (o *Orchestrator) Admit(ctx context.Context, mode domain.SyncMode) (*Run, error) {
	ok, err := o.guard.TryAcquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run guard: %w", err)
	}
	if !ok {
		o.metrics.RunCollided()
		o.logger.Info().Str("mode", string(mode)).Msg("sync already in progress, dropping trigger")
		return nil, ErrRunCollision
	}

	id, err := gonanoid.New()
	if err != nil {
		o.releaseGuard(ctx)
		return nil, fmt.Errorf("failed to generate run id: %w", err)
	}
	return &Run{ID: id, Mode: mode, StartedAt: time.Now()}, nil
}

// Execute performs an admitted run and releases the guard when done.
// Only a failure to list accounts is returned as an error.
func (o *Orchestrator) Execute(ctx context.Context, run *Run) (*domain.RunReport, error) {
	defer o.releaseGuard(ctx)

	log := o.logger.With().Str("run_id", run.ID).Str("mode", string(run.Mode)).Logger()
	o.metrics.RunStarted()
	log.Info().Msg("sync run started")

	report := &domain.RunReport{
		ID:        run.ID,
		Mode:      run.Mode,
		StartedAt: run.StartedAt,
	}

	accounts, err := o.accounts.List(ctx)
	if err != nil {
		report.FinishedAt = time.Now()
		report.Duration = report.FinishedAt.Sub(report.StartedAt)
		o.metrics.RunFinished(metrics.RunFailed, report.Duration)
		log.Error().Err(err).Msg("sync run failed to list accounts")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	report.Accounts = len(accounts)

	res := o.scheduler.Run(ctx, accounts, func(ctx context.Context, account domain.TrackedAccount) domain.Outcome {
		return o.syncer.Sync(ctx, account, run.Mode)
	})

	report.Outcomes = res.Outcomes
	report.Batches = res.Batches
	report.Pauses = res.Pauses
	report.Canceled = res.Canceled
	report.Tally()
	report.FinishedAt = time.Now()
	report.Duration = report.FinishedAt.Sub(report.StartedAt)

	result := metrics.RunCompleted
	if report.Canceled {
		result = metrics.RunCanceled
	}
	o.metrics.RunFinished(result, report.Duration)
	o.mu.Lock()
	o.last = report
	o.mu.Unlock()

	log.Info().
		Int("accounts", report.Accounts).
		Int("synced", report.Synced).
		Int("unranked", report.Unranked).
		Int("failed", report.Failed).
		Int("batches", report.Batches).
		Bool("canceled", report.Canceled).
		Dur("duration", report.Duration).
		Msg("sync run finished")
	return report, nil
}

// LastReport returns the most recent completed run, or nil.
func (o *Orchestrator) LastReport() *domain.RunReport {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.last
}

func (o *Orchestrator) releaseGuard(ctx context.Context) {
	if err := o.guard.Release(context.WithoutCancel(ctx)); err != nil {
		o.logger.Warn().Err(err).Msg("failed to release run guard")
	}
}
