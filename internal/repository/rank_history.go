package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"roster-sync/internal/db"
	"roster-sync/internal/domain"

	"github.com/rs/zerolog"
)

var ErrSnapshotNotFound = errors.New("rank snapshot not found")

// RankHistoryRepository is append-only: it never updates or deletes rows.
type RankHistoryRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
}

func NewRankHistoryRepository(queries *db.Queries, logger zerolog.Logger) *RankHistoryRepository {
	return &RankHistoryRepository{
		queries: queries,
		logger:  logger,
	}
}

func (r *RankHistoryRepository) Append(ctx context.Context, snapshot domain.RankSnapshot) (int64, error) {
	division := sql.NullString{String: snapshot.Division, Valid: snapshot.Division != ""}

	id, err := r.queries.InsertLeagueEntry(ctx, db.InsertLeagueEntryParams{
		AccountID:     snapshot.AccountID,
		FetchedAt:     snapshot.FetchedAt.UTC(),
		Lp:            int64(snapshot.LP),
		Wins:          int64(snapshot.Wins),
		Losses:        int64(snapshot.Losses),
		Tier:          snapshot.Tier,
		Division:      division,
		ProfileIconID: nullInt64(snapshot.ProfileIconID),
		RecordedAt:    snapshot.RecordedAt.UTC(),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to append rank snapshot: %w", err)
	}

	r.logger.Debug().
		Int64("account_id", snapshot.AccountID).
		Int64("snapshot_id", id).
		Str("tier", snapshot.Tier).
		Str("division", snapshot.Division).
		Int("lp", snapshot.LP).
		Msg("rank snapshot appended")
	return id, nil
}

// Latest returns the snapshot with the most recent recorded_at.
func (r *RankHistoryRepository) Latest(ctx context.Context, accountID int64) (*domain.RankSnapshot, error) {
	row, err := r.queries.GetLatestLeagueEntry(ctx, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest rank snapshot: %w", err)
	}
	snapshot := toRankSnapshot(row)
	return &snapshot, nil
}

func (r *RankHistoryRepository) ListByAccount(ctx context.Context, accountID int64) ([]domain.RankSnapshot, error) {
	rows, err := r.queries.ListLeagueEntriesByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rank snapshots: %w", err)
	}

	result := make([]domain.RankSnapshot, len(rows))
	for i, row := range rows {
		result[i] = toRankSnapshot(row)
	}
	return result, nil
}

func toRankSnapshot(row db.LeagueEntry) domain.RankSnapshot {
	return domain.RankSnapshot{
		ID:            row.ID,
		AccountID:     row.AccountID,
		FetchedAt:     row.FetchedAt,
		LP:            int(row.Lp),
		Wins:          int(row.Wins),
		Losses:        int(row.Losses),
		Tier:          row.Tier,
		Division:      row.Division.String,
		ProfileIconID: int64Ptr(row.ProfileIconID),
		RecordedAt:    row.RecordedAt,
	}
}
