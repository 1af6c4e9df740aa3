package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"roster-sync/internal/config"
	"roster-sync/internal/constants"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*/*.sql
var embedMigrations embed.FS

func New(cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	dsn := cfg.DatabaseURL
	if cfg.DBDriver == config.DriverSQLite {
		dsn = SQLiteDSN(cfg.DBPath)
	}
	return Open(cfg.DBDriver, dsn, logger)
}

// Open connects with the given driver, tunes the pool and applies the
// embedded migrations for that driver's dialect.
func Open(driver, dsn string, logger zerolog.Logger) (*sql.DB, error) {
	logger.Info().Str("driver", driver).Msg("connecting to database")

	db, err := sql.Open(driver, dsn)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(constants.DBMaxOpenConns)
	db.SetMaxIdleConns(constants.DBMaxIdleConns)
	db.SetConnMaxLifetime(constants.DBConnMaxLifetime)
	db.SetConnMaxIdleTime(constants.DBMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if driver == config.DriverSQLite {
		if err := optimizeSQLite(db, logger); err != nil {
			logger.Error().Err(err).Msg("failed to optimize SQLite")
			db.Close()
			return nil, fmt.Errorf("failed to optimize SQLite: %w", err)
		}
	}
	if err := runMigrations(db, driver, logger); err != nil {
		logger.Error().Err(err).Msg("failed to run migrations")
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info().Str("driver", driver).Msg("database connection established")
	return db, nil
}

func runMigrations(db *sql.DB, driver string, logger zerolog.Logger) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect(driver); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations/"+driver); err != nil {
		return fmt.Errorf("failed to run goose migrations: %w", err)
	}

	logger.Info().Msg("migrations completed successfully")
	return nil
}

// SQLiteDSN turns on foreign keys and a busy timeout for every pooled
// connection, not only the one the pragmas below run on.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

func optimizeSQLite(sqlDB *sql.DB, logger zerolog.Logger) error {
	pragmas := []struct {
		name  string
		value string
	}{
		{"journal_mode", "WAL"},
		{"synchronous", "NORMAL"},
		{"cache_size", "-16000"},
		{"temp_store", "MEMORY"},
	}

	for _, pragma := range pragmas {
		query := fmt.Sprintf("PRAGMA %s = %s", pragma.name, pragma.value)
		if _, err := sqlDB.Exec(query); err != nil {
			logger.Warn().
				Err(err).
				Str("pragma", pragma.name).
				Str("value", pragma.value).
				Msg("failed to set pragma")
			return fmt.Errorf("failed to set PRAGMA %s: %w", pragma.name, err)
		}
		logger.Debug().
			Str("pragma", pragma.name).
			Str("value", pragma.value).
			Msg("SQLite pragma set")
	}

	return nil
}
