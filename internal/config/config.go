package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"roster-sync/internal/constants"
	"roster-sync/internal/logger"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

var ErrMissingAPIKey = errors.New("RIOT_API_KEY is required")

type Config struct {
	RiotAPIKey            string
	RiotRegionalURL       string
	RiotPlatformURL       string
	RiotTimeout           time.Duration
	RiotRequestsPerSecond float64
	RiotBurst             int
	RiotBreakerFailures   uint32
	RiotBreakerTimeout    time.Duration

	DBDriver    string
	DBPath      string
	DatabaseURL string

	ServerPort string
	LogLevel   string

	SyncSchedule     string
	SyncOnStartup    bool
	SyncBatchSize    int
	SyncRequestDelay time.Duration
	SyncBatchPause   time.Duration

	RedisURL    string
	SyncLockTTL time.Duration
}

func Load(log zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	p := &parser{}
	breakerFailures := p.int("RIOT_BREAKER_FAILURES", 5)
	cfg := &Config{
		RiotAPIKey:            getEnv("RIOT_API_KEY", ""),
		RiotRegionalURL:       strings.TrimRight(getEnv("RIOT_REGIONAL_URL", constants.DefaultRegional), "/"),
		RiotPlatformURL:       strings.TrimRight(getEnv("RIOT_PLATFORM_URL", constants.DefaultPlatform), "/"),
		RiotTimeout:           p.duration("RIOT_TIMEOUT", constants.ExternalAPITimeout),
		RiotRequestsPerSecond: p.float("RIOT_REQUESTS_PER_SECOND", 20),
		RiotBurst:             p.int("RIOT_BURST", 20),
		RiotBreakerFailures:   uint32(max(breakerFailures, 0)),
		RiotBreakerTimeout:    p.duration("RIOT_BREAKER_TIMEOUT", 30*time.Second),

		DBDriver:    getEnv("DB_DRIVER", DriverSQLite),
		DBPath:      getEnv("DB_PATH", "roster.db"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		SyncSchedule:     getEnv("SYNC_SCHEDULE", "*/30 * * * *"),
		SyncOnStartup:    p.bool("SYNC_ON_STARTUP", true),
		SyncBatchSize:    p.int("SYNC_BATCH_SIZE", 20),
		SyncRequestDelay: p.duration("SYNC_REQUEST_DELAY", 500*time.Millisecond),
		SyncBatchPause:   p.duration("SYNC_BATCH_PAUSE", 5*time.Minute),

		RedisURL:    getEnv("REDIS_URL", ""),
		SyncLockTTL: p.duration("SYNC_LOCK_TTL", 3*time.Hour),
	}

	if p.err != nil {
		return nil, p.err
	}
	if breakerFailures < 0 {
		return nil, fmt.Errorf("RIOT_BREAKER_FAILURES must not be negative, got %d", breakerFailures)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.ApplyLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("sync_schedule", cfg.SyncSchedule).
		Int("sync_batch_size", cfg.SyncBatchSize).
		Dur("sync_request_delay", cfg.SyncRequestDelay).
		Dur("sync_batch_pause", cfg.SyncBatchPause).
		Bool("redis_lock", cfg.RedisURL != "").
		Msg("configuration loaded")

	return cfg, nil
}

// Validate reports the first configuration problem that must stop startup.
func (c *Config) Validate() error {
	if c.RiotAPIKey == "" {
		return ErrMissingAPIKey
	}
	switch c.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_DRIVER=%s", DriverPostgres)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.SyncBatchSize <= 0 {
		return fmt.Errorf("SYNC_BATCH_SIZE must be positive, got %d", c.SyncBatchSize)
	}
	if c.SyncRequestDelay < 0 || c.SyncBatchPause < 0 {
		return fmt.Errorf("sync delays must not be negative")
	}
	if c.RiotRequestsPerSecond <= 0 || c.RiotBurst <= 0 {
		return fmt.Errorf("RIOT_REQUESTS_PER_SECOND and RIOT_BURST must be positive")
	}
	if _, err := cron.ParseStandard(c.SyncSchedule); err != nil {
		return fmt.Errorf("invalid SYNC_SCHEDULE %q: %w", c.SyncSchedule, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parser keeps the first conversion error so Load can report it once.
type parser struct {
	err error
}

func (p *parser) fail(key, v string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
}

func (p *parser) int(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return n
}

func (p *parser) float(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return f
}

func (p *parser) bool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return b
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return d
}
