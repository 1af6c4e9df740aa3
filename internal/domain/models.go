package domain

import (
	"strings"
	"time"

	"roster-sync/internal/constants"
)

type TrackedAccount struct {
	ID            int64
	PlayerID      int64
	Puuid         string
	GameName      string
	TagLine       string
	Slug          string
	ProfileIconID *int64
	LastCheckedAt *time.Time
}

// Identity is the mutable display name of an account.
type Identity struct {
	GameName string
	TagLine  string
}

func (i Identity) Slug() string {
	return Slug(i.GameName, i.TagLine)
}

func (i Identity) String() string {
	return i.GameName + "#" + i.TagLine
}

// Slug is lowercase(game_name)-tag_line. The tag keeps its case.
func Slug(gameName, tagLine string) string {
	return strings.ToLower(gameName) + "-" + tagLine
}

func (a TrackedAccount) Identity() Identity {
	return Identity{GameName: a.GameName, TagLine: a.TagLine}
}

// ShortPuuid is the log-friendly prefix of the puuid.
func (a TrackedAccount) ShortPuuid() string {
	if len(a.Puuid) <= constants.ShortPUUIDLength {
		return a.Puuid
	}
	return a.Puuid[:constants.ShortPUUIDLength]
}

type RankSnapshot struct {
	ID            int64
	AccountID     int64
	FetchedAt     time.Time
	LP            int
	Wins          int
	Losses        int
	Tier          string // lowercase
	Division      string // "" for apex tiers
	ProfileIconID *int64
	RecordedAt    time.Time
}

type NameChange struct {
	ID          int64
	AccountID   int64
	OldGameName string
	OldTagLine  string
	ChangedAt   time.Time
}

type SyncMode string

const (
	ModeFull      SyncMode = "full"
	ModeNamesOnly SyncMode = "names"
)

func ParseSyncMode(s string) (SyncMode, bool) {
	switch SyncMode(strings.ToLower(s)) {
	case "", ModeFull:
		return ModeFull, true
	case ModeNamesOnly:
		return ModeNamesOnly, true
	}
	return "", false
}

// Stage is the last state an account reached in the per-account procedure.
type Stage string

const (
	StageStart            Stage = "start"
	StageIdentityResolved Stage = "identity_resolved"
	StageSummonerResolved Stage = "summoner_resolved"
	StageRankedLookup     Stage = "ranked_lookup"
	StageSnapshotted      Stage = "snapshotted"
	StageUnranked         Stage = "unranked"
	StageAborted          Stage = "aborted"
)

type OutcomeStatus string

const (
	StatusSynced   OutcomeStatus = "synced"
	StatusUnranked OutcomeStatus = "unranked"
	StatusFailed   OutcomeStatus = "failed"
)

// FailureReason classifies why an account was aborted.
type FailureReason string

const (
	ReasonNone      FailureReason = ""
	ReasonForbidden FailureReason = "forbidden"
	ReasonNotFound  FailureReason = "not_found"
	ReasonTransient FailureReason = "transient"
	ReasonStore     FailureReason = "store"
	ReasonCanceled  FailureReason = "canceled"
)

type Outcome struct {
	AccountID       int64
	Puuid           string
	Status          OutcomeStatus
	Stage           Stage
	AbortedAt       Stage // stage being attempted when the account aborted
	Reason          FailureReason
	Err             error
	IdentityUpdated bool
	NameChanged     bool
	IconUpdated     bool
	SnapshotID      int64
	Duration        time.Duration
}

type RunReport struct {
	ID         string
	Mode       SyncMode
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
	Accounts   int
	Batches    int
	Pauses     int
	Synced     int
	Unranked   int
	Failed     int
	Canceled   bool
	Outcomes   []Outcome
}

// Tally recomputes the aggregate counters from the outcomes.
func (r *RunReport) Tally() {
	r.Synced, r.Unranked, r.Failed = 0, 0, 0
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusSynced:
			r.Synced++
		case StatusUnranked:
			r.Unranked++
		case StatusFailed:
			r.Failed++
		}
	}
}
