package server

import (
	"time"

	"roster-sync/internal/domain"
	"roster-sync/internal/ranking"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type HealthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
	Error  string    `json:"error,omitempty"`
}

type SyncAcceptedResponse struct {
	RunID string `json:"run_id"`
	Mode  string `json:"mode"`
}

type OutcomeResponse struct {
	AccountID   int64  `json:"account_id"`
	Puuid       string `json:"puuid"`
	Status      string `json:"status"`
	Stage       string `json:"stage"`
	AbortedAt   string `json:"aborted_at,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Error       string `json:"error,omitempty"`
	NameChanged bool   `json:"name_changed"`
	SnapshotID  int64  `json:"snapshot_id,omitempty"`
	DurationMs  int64  `json:"duration_ms"`
}

type RunReportResponse struct {
	ID         string            `json:"id"`
	Mode       string            `json:"mode"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	DurationMs int64             `json:"duration_ms"`
	Accounts   int               `json:"accounts"`
	Batches    int               `json:"batches"`
	Pauses     int               `json:"pauses"`
	Synced     int               `json:"synced"`
	Unranked   int               `json:"unranked"`
	Failed     int               `json:"failed"`
	Canceled   bool              `json:"canceled"`
	Outcomes   []OutcomeResponse `json:"outcomes"`
}

type NameChangeResponse struct {
	OldGameName string    `json:"old_game_name"`
	OldTagLine  string    `json:"old_tag_line"`
	ChangedAt   time.Time `json:"changed_at"`
}

type RankSnapshotResponse struct {
	Tier          string    `json:"tier"`
	Division      string    `json:"division,omitempty"`
	LP            int       `json:"lp"`
	Wins          int       `json:"wins"`
	Losses        int       `json:"losses"`
	Standing      string    `json:"standing"`
	ProfileIconID *int64    `json:"profile_icon_id,omitempty"`
	FetchedAt     time.Time `json:"fetched_at"`
	RecordedAt    time.Time `json:"recorded_at"`
}

type AccountResponse struct {
	Puuid          string                 `json:"puuid"`
	GameName       string                 `json:"game_name"`
	TagLine        string                 `json:"tag_line"`
	Slug           string                 `json:"slug"`
	ProfileIconID  *int64                 `json:"profile_icon_id,omitempty"`
	LastCheckedAt  *time.Time             `json:"last_checked_at,omitempty"`
	RankingVersion int                    `json:"ranking_version"`
	NameHistory    []NameChangeResponse   `json:"name_history"`
	RankHistory    []RankSnapshotResponse `json:"rank_history"`
}

func toRunReportResponse(r *domain.RunReport) RunReportResponse {
	resp := RunReportResponse{
		ID:         r.ID,
		Mode:       string(r.Mode),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		DurationMs: r.Duration.Milliseconds(),
		Accounts:   r.Accounts,
		Batches:    r.Batches,
		Pauses:     r.Pauses,
		Synced:     r.Synced,
		Unranked:   r.Unranked,
		Failed:     r.Failed,
		Canceled:   r.Canceled,
		Outcomes:   make([]OutcomeResponse, len(r.Outcomes)),
	}
	for i, o := range r.Outcomes {
		out := OutcomeResponse{
			AccountID:   o.AccountID,
			Puuid:       o.Puuid,
			Status:      string(o.Status),
			Stage:       string(o.Stage),
			AbortedAt:   string(o.AbortedAt),
			Reason:      string(o.Reason),
			NameChanged: o.NameChanged,
			SnapshotID:  o.SnapshotID,
			DurationMs:  o.Duration.Milliseconds(),
		}
		if o.Err != nil {
			out.Error = o.Err.Error()
		}
		resp.Outcomes[i] = out
	}
	return resp
}

func toAccountResponse(a *domain.TrackedAccount, names []domain.NameChange, ranks []domain.RankSnapshot) AccountResponse {
	resp := AccountResponse{
		Puuid:          a.Puuid,
		GameName:       a.GameName,
		TagLine:        a.TagLine,
		Slug:           a.Slug,
		ProfileIconID:  a.ProfileIconID,
		LastCheckedAt:  a.LastCheckedAt,
		RankingVersion: ranking.Version,
		NameHistory:    make([]NameChangeResponse, len(names)),
		RankHistory:    make([]RankSnapshotResponse, len(ranks)),
	}
	for i, n := range names {
		resp.NameHistory[i] = NameChangeResponse{
			OldGameName: n.OldGameName,
			OldTagLine:  n.OldTagLine,
			ChangedAt:   n.ChangedAt,
		}
	}
	for i, s := range ranks {
		resp.RankHistory[i] = RankSnapshotResponse{
			Tier:          s.Tier,
			Division:      s.Division,
			LP:            s.LP,
			Wins:          s.Wins,
			Losses:        s.Losses,
			Standing:      ranking.Standing{Tier: s.Tier, Division: s.Division, LP: s.LP}.String(),
			ProfileIconID: s.ProfileIconID,
			FetchedAt:     s.FetchedAt,
			RecordedAt:    s.RecordedAt,
		}
	}
	return resp
}
