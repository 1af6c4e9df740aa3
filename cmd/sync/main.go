// Command sync performs one synchronization run and exits. With -mode names
// it only refreshes account identities.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync/atomic"

	"roster-sync/internal/domain"
	fxmodules "roster-sync/internal/fx"
	"roster-sync/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

var exitCode atomic.Int32

func main() {
	modeFlag := flag.String("mode", string(domain.ModeFull), "sync mode: full or names")
	flag.Parse()

	mode, ok := domain.ParseSyncMode(*modeFlag)
	if !ok {
		fmt.Fprintf(os.Stderr, "invalid -mode %q: want full or names\n", *modeFlag)
		os.Exit(2)
	}

	app := fx.New(
		fxmodules.Module,
		fx.NopLogger,
		fx.Supply(mode),
		fx.Invoke(runOnce),
	)
	app.Run()
	if code := exitCode.Load(); code != 0 {
		os.Exit(int(code))
	}
}

func runOnce(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	orch *service.Orchestrator,
	mode domain.SyncMode,
	logger zerolog.Logger,
) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				report, err := orch.RunSync(ctx, mode)
				if err != nil {
					logger.Error().Err(err).Msg("sync failed")
					exitCode.Store(1)
				} else {
					logger.Info().
						Str("run_id", report.ID).
						Int("synced", report.Synced).
						Int("unranked", report.Unranked).
						Int("failed", report.Failed).
						Msg("sync complete")
				}
				shutdowner.Shutdown(fx.ExitCode(int(exitCode.Load())))
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
