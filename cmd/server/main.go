package main

import (
	"context"
	"fmt"
	"net/http"

	"roster-sync/internal/config"
	"roster-sync/internal/constants"
	"roster-sync/internal/cron"
	fxmodules "roster-sync/internal/fx"
	"roster-sync/internal/server"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(cron.Register),
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	adminServer *server.AdminServer,
	cfg *config.Config,
	logger zerolog.Logger,
) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           adminServer.Routes(),
		ReadHeaderTimeout: constants.RequestTimeout,
		WriteTimeout:      constants.RequestTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("admin server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("admin server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down admin server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("admin server shutdown failed")
				return err
			}
			logger.Info().Msg("admin server stopped gracefully")
			return nil
		},
	})
}
