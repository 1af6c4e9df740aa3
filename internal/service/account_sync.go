package service

import (
	"context"
	"errors"
	"time"

	"roster-sync/internal/api"
	"roster-sync/internal/domain"
	"roster-sync/internal/metrics"
	"roster-sync/internal/ranking"
	"roster-sync/internal/repository"

	"github.com/rs/zerolog"
)

// RiotGateway is the subset of the Riot API the sync procedure needs.
type RiotGateway interface {
	AccountByPUUID(ctx context.Context, puuid string) (*api.AccountResponse, error)
	SummonerByPUUID(ctx context.Context, puuid string) (*api.SummonerResponse, error)
	LeagueEntriesBySummoner(ctx context.Context, summonerID string) ([]api.LeagueEntry, error)
}

type AccountStore interface {
	List(ctx context.Context) ([]domain.TrackedAccount, error)
	ApplyIdentity(ctx context.Context, account domain.TrackedAccount, identity domain.Identity, at time.Time) (repository.IdentityChange, error)
	UpdateProfileIcon(ctx context.Context, accountID int64, iconID *int64, at time.Time) error
}

type RankHistoryStore interface {
	Append(ctx context.Context, snapshot domain.RankSnapshot) (int64, error)
	Latest(ctx context.Context, accountID int64) (*domain.RankSnapshot, error)
}

// AccountSyncer runs the per-account procedure: identity, then summoner,
// then ranked lookup. A failure aborts only the account it belongs to.
type AccountSyncer struct {
	riot     RiotGateway
	accounts AccountStore
	history  RankHistoryStore
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	now      func() time.Time
}

func NewAccountSyncer(riot RiotGateway, accounts AccountStore, history RankHistoryStore, m *metrics.Metrics, logger zerolog.Logger) *AccountSyncer {
	return &AccountSyncer{
		riot:     riot,
		accounts: accounts,
		history:  history,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *AccountSyncer) Sync(ctx context.Context, account domain.TrackedAccount, mode domain.SyncMode) domain.Outcome {
	start := s.now()
	log := s.logger.With().
		Int64("account_id", account.ID).
		Str("puuid", account.ShortPuuid()).
		Logger()

	out := domain.Outcome{
		AccountID: account.ID,
		Puuid:     account.Puuid,
		Stage:     domain.StageStart,
	}
	finish := func() domain.Outcome {
		out.Duration = s.now().Sub(start)
		s.metrics.AccountSynced(string(out.Status), string(out.Reason))
		ev := log.Debug()
		if out.Status == domain.StatusFailed {
			ev = log.Warn().Err(out.Err).Str("reason", string(out.Reason)).Str("aborted_at", string(out.AbortedAt))
		}
		ev.Str("status", string(out.Status)).Dur("duration", out.Duration).Msg("account sync finished")
		return out
	}
	abort := func(reason domain.FailureReason, err error) domain.Outcome {
		out.AbortedAt = out.Stage
		out.Stage = domain.StageAborted
		out.Status = domain.StatusFailed
		out.Reason = reason
		out.Err = err
		return finish()
	}

	identity, err := s.riot.AccountByPUUID(ctx, account.Puuid)
	switch {
	case err == nil:
		change, err := s.accounts.ApplyIdentity(ctx, account, domain.Identity{
			GameName: identity.GameName,
			TagLine:  identity.TagLine,
		}, s.now())
		if err != nil {
			return abort(domain.ReasonStore, err)
		}
		out.IdentityUpdated = change.Updated
		out.NameChanged = change.Renamed
	case errors.Is(err, api.ErrForbidden) && mode != domain.ModeNamesOnly:
		log.Warn().Err(err).Msg("identity lookup forbidden, keeping stored identity")
	default:
		return abort(failureReason(ctx, err), err)
	}
	out.Stage = domain.StageIdentityResolved

	if mode == domain.ModeNamesOnly {
		out.Status = domain.StatusSynced
		return finish()
	}

	summoner, err := s.riot.SummonerByPUUID(ctx, account.Puuid)
	if err != nil {
		return abort(failureReason(ctx, err), err)
	}
	icon := summoner.ProfileIconID
	if err := s.accounts.UpdateProfileIcon(ctx, account.ID, &icon, s.now()); err != nil {
		return abort(domain.ReasonStore, err)
	}
	out.IconUpdated = true
	out.Stage = domain.StageSummonerResolved

	entries, err := s.riot.LeagueEntriesBySummoner(ctx, summoner.ID)
	if err != nil {
		return abort(failureReason(ctx, err), err)
	}
	fetchedAt := s.now()
	out.Stage = domain.StageRankedLookup

	solo, ok := api.SoloQueueEntry(entries)
	if !ok {
		out.Stage = domain.StageUnranked
		out.Status = domain.StatusUnranked
		return finish()
	}

	snapshot := domain.RankSnapshot{
		AccountID:     account.ID,
		FetchedAt:     fetchedAt,
		LP:            solo.LeaguePoints,
		Wins:          solo.Wins,
		Losses:        solo.Losses,
		Tier:          ranking.NormalizeTier(solo.Tier),
		Division:      solo.Rank,
		ProfileIconID: &icon,
	}
	s.compareWithLatest(ctx, log, snapshot)

	snapshot.RecordedAt = s.now()
	id, err := s.history.Append(ctx, snapshot)
	if err != nil {
		return abort(domain.ReasonStore, err)
	}
	out.SnapshotID = id
	out.Stage = domain.StageSnapshotted
	out.Status = domain.StatusSynced
	return finish()
}

// compareWithLatest logs and counts the move from the previous snapshot.
// It never fails the account.
func (s *AccountSyncer) compareWithLatest(ctx context.Context, log zerolog.Logger, current domain.RankSnapshot) {
	prev, err := s.history.Latest(ctx, current.AccountID)
	if errors.Is(err, repository.ErrSnapshotNotFound) {
		log.Debug().Msg("first rank snapshot for account")
		return
	}
	if err != nil {
		log.Warn().Err(err).Msg("failed to read previous rank snapshot")
		return
	}

	before := ranking.Standing{Tier: prev.Tier, Division: prev.Division, LP: prev.LP}
	after := ranking.Standing{Tier: current.Tier, Division: current.Division, LP: current.LP}
	direction := ranking.Direction(before, after)
	s.metrics.RankChanged(direction)

	if direction != "same" {
		log.Info().
			Str("from", before.String()).
			Str("to", after.String()).
			Str("direction", direction).
			Int("ranking_version", ranking.Version).
			Msg("rank changed")
	}
}

func failureReason(ctx context.Context, err error) domain.FailureReason {
	switch {
	case errors.Is(err, api.ErrForbidden):
		return domain.ReasonForbidden
	case errors.Is(err, api.ErrNotFound):
		return domain.ReasonNotFound
	case ctx.Err() != nil:
		return domain.ReasonCanceled
	}
	return domain.ReasonTransient
}
