package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
	CronStopTimeout = 30 * time.Second
)

// riot
const (
	RankedSoloQueue  = "RANKED_SOLO_5x5"
	RiotTokenHeader  = "X-Riot-Token"
	DefaultRegional  = "https://americas.api.riotgames.com"
	DefaultPlatform  = "https://na1.api.riotgames.com"
	RunLockKey       = "roster-sync:run-lock"
	ShortPUUIDLength = 8
)
