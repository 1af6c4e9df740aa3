package service

import (
	"context"
	"time"

	"roster-sync/internal/config"
	"roster-sync/internal/domain"

	"github.com/rs/zerolog"
)

// SleepFunc waits for d or until ctx is done, whichever comes first.
type SleepFunc func(ctx context.Context, d time.Duration) error

func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Partition splits accounts into contiguous batches of at most size,
// preserving order.
func Partition(accounts []domain.TrackedAccount, size int) [][]domain.TrackedAccount {
	if size <= 0 {
		size = len(accounts)
	}
	var batches [][]domain.TrackedAccount
	for start := 0; start < len(accounts); start += size {
		end := min(start+size, len(accounts))
		batches = append(batches, accounts[start:end])
	}
	return batches
}

type ScheduleResult struct {
	Outcomes []domain.Outcome
	Batches  int
	Pauses   int
	Canceled bool
}

type BatchScheduler struct {
	size         int
	requestDelay time.Duration
	batchPause   time.Duration
	sleep        SleepFunc
	logger       zerolog.Logger
}

func NewBatchScheduler(size int, requestDelay, batchPause time.Duration, sleep SleepFunc, logger zerolog.Logger) *BatchScheduler {
	if sleep == nil {
		sleep = Sleep
	}
	return &BatchScheduler{
		size:         size,
		requestDelay: requestDelay,
		batchPause:   batchPause,
		sleep:        sleep,
		logger:       logger,
	}
}

func NewBatchSchedulerFromConfig(cfg *config.Config, logger zerolog.Logger) *BatchScheduler {
	return NewBatchScheduler(cfg.SyncBatchSize, cfg.SyncRequestDelay, cfg.SyncBatchPause, Sleep, logger)
}

// Run processes accounts one at a time. The request delay separates accounts
// inside a batch and the batch pause separates batches. A cancelled context
// ends the run with whatever outcomes were gathered.
func (b *BatchScheduler) Run(ctx context.Context, accounts []domain.TrackedAccount, sync func(context.Context, domain.TrackedAccount) domain.Outcome) ScheduleResult {
	var res ScheduleResult
	batches := Partition(accounts, b.size)

	for bi, batch := range batches {
		res.Batches++
		b.logger.Info().
			Int("batch", bi+1).
			Int("batches", len(batches)).
			Int("size", len(batch)).
			Msg("processing batch")

		for ai, account := range batch {
			if ctx.Err() != nil {
				res.Canceled = true
				return res
			}
			res.Outcomes = append(res.Outcomes, sync(ctx, account))

			if ai < len(batch)-1 && b.requestDelay > 0 {
				if err := b.sleep(ctx, b.requestDelay); err != nil {
					res.Canceled = true
					return res
				}
			}
		}

		if bi < len(batches)-1 {
			res.Pauses++
			b.logger.Info().
				Dur("pause", b.batchPause).
				Int("remaining", len(batches)-bi-1).
				Msg("pausing between batches")
			if err := b.sleep(ctx, b.batchPause); err != nil {
				res.Canceled = true
				return res
			}
		}
	}
	return res
}
