package fx

import (
	"context"
	"database/sql"

	"roster-sync/internal/api"
	"roster-sync/internal/config"
	"roster-sync/internal/constants"
	"roster-sync/internal/cron"
	"roster-sync/internal/database"
	"roster-sync/internal/db"
	"roster-sync/internal/lock"
	"roster-sync/internal/logger"
	"roster-sync/internal/metrics"
	"roster-sync/internal/repository"
	"roster-sync/internal/server"
	"roster-sync/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideDatabase(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	sqlDB, err := database.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := sqlDB.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			return nil
		},
	})
	return sqlDB, nil
}

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

func ProvideAccountSyncer(
	riot *api.RiotClient,
	accounts *repository.AccountRepository,
	history *repository.RankHistoryRepository,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *service.AccountSyncer {
	return service.NewAccountSyncer(riot, accounts, history, m, logger)
}

// ProvideRunGuard always includes the in-process guard and adds the Redis
// lease when REDIS_URL is set.
func ProvideRunGuard(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (service.RunGuard, error) {
	local := service.NewLocalGuard()
	if cfg.RedisURL == "" {
		return local, nil
	}

	client, err := lock.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	logger.Info().Dur("ttl", cfg.SyncLockTTL).Msg("cross-replica run lock enabled")
	return service.ChainGuard{local, lock.NewRedisGuard(client, constants.RunLockKey, cfg.SyncLockTTL, logger)}, nil
}

func ProvideOrchestrator(
	accounts *repository.AccountRepository,
	syncer *service.AccountSyncer,
	scheduler *service.BatchScheduler,
	guard service.RunGuard,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *service.Orchestrator {
	return service.NewOrchestrator(accounts, syncer, scheduler, guard, m, logger)
}

func ProvideAdminServer(
	runner *cron.Runner,
	orch *service.Orchestrator,
	riot *api.RiotClient,
	accounts *repository.AccountRepository,
	history *repository.RankHistoryRepository,
	sqlDB *sql.DB,
	gatherer prometheus.Gatherer,
	logger zerolog.Logger,
) *server.AdminServer {
	return server.NewAdminServer(runner, orch, riot, accounts, history, sqlDB, gatherer, logger)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(
		fx.Annotate(
			metrics.NewRegistry,
			fx.As(new(prometheus.Registerer)),
			fx.As(new(prometheus.Gatherer)),
		),
	),
	fx.Provide(metrics.New),
	fx.Provide(ProvideDatabase),
	fx.Provide(ProvideQueries),
	// repos
	fx.Provide(repository.NewAccountRepository),
	fx.Provide(repository.NewRankHistoryRepository),
	// api client
	fx.Provide(api.NewRiotClient),
	// svc
	fx.Provide(ProvideAccountSyncer),
	fx.Provide(service.NewBatchSchedulerFromConfig),
	fx.Provide(ProvideRunGuard),
	fx.Provide(ProvideOrchestrator),
	// triggers
	fx.Provide(cron.NewRunner),
	// server
	fx.Provide(ProvideAdminServer),
)
