package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"roster-sync/internal/db"
	"roster-sync/internal/domain"

	"github.com/rs/zerolog"
)

var ErrAccountNotFound = errors.New("account not found")

type AccountRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewAccountRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *AccountRepository {
	return &AccountRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// IdentityChange describes what ApplyIdentity wrote.
type IdentityChange struct {
	Updated  bool
	Renamed  bool
	Previous domain.Identity
}

func (r *AccountRepository) List(ctx context.Context) ([]domain.TrackedAccount, error) {
	rows, err := r.queries.ListRiotAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	accounts := make([]domain.TrackedAccount, len(rows))
	for i, row := range rows {
		accounts[i] = toTrackedAccount(row)
	}
	return accounts, nil
}

func (r *AccountRepository) GetByPuuid(ctx context.Context, puuid string) (*domain.TrackedAccount, error) {
	row, err := r.queries.GetRiotAccountByPuuid(ctx, puuid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	account := toTrackedAccount(row)
	return &account, nil
}

// ApplyIdentity upserts the display identity of one account keyed by puuid.
// When the stored name or tag differs, the old pair goes to the username
// history first. An unchanged identity writes nothing.
func (r *AccountRepository) ApplyIdentity(ctx context.Context, account domain.TrackedAccount, identity domain.Identity, at time.Time) (IdentityChange, error) {
	var change IdentityChange

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return change, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	playerID := account.PlayerID
	stored, err := qtx.GetRiotAccountByPuuid(ctx, account.Puuid)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		r.logger.Warn().Str("puuid", account.Puuid).Msg("account row missing, re-inserting")
	case err != nil:
		return change, fmt.Errorf("failed to read stored identity: %w", err)
	default:
		playerID = stored.PlayerID
		change.Previous = domain.Identity{GameName: stored.GameName, TagLine: stored.TagLine}
		if change.Previous == identity && stored.RiotSlug == identity.Slug() {
			return change, nil
		}
		if change.Previous.GameName != identity.GameName || change.Previous.TagLine != identity.TagLine {
			err := qtx.InsertUsernameHistory(ctx, db.InsertUsernameHistoryParams{
				AccountID:   stored.ID,
				OldGameName: stored.GameName,
				OldTagLine:  stored.TagLine,
				ChangedAt:   at.UTC(),
			})
			if err != nil {
				return change, fmt.Errorf("failed to insert username history: %w", err)
			}
			change.Renamed = true
		}
	}

	err = qtx.UpsertRiotAccountIdentity(ctx, db.UpsertRiotAccountIdentityParams{
		PlayerID:      playerID,
		Puuid:         account.Puuid,
		GameName:      identity.GameName,
		TagLine:       identity.TagLine,
		RiotSlug:      identity.Slug(),
		LastCheckedAt: sql.NullTime{Time: at.UTC(), Valid: true},
	})
	if err != nil {
		return change, fmt.Errorf("failed to upsert account identity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return change, fmt.Errorf("failed to commit identity: %w", err)
	}

	change.Updated = true
	if change.Renamed {
		r.logger.Info().
			Int64("account_id", account.ID).
			Str("old", change.Previous.String()).
			Str("new", identity.String()).
			Msg("account identity changed")
	}
	return change, nil
}

// UpdateProfileIcon stores the icon id and stamps last_checked_at. A nil
// icon keeps the stored value.
func (r *AccountRepository) UpdateProfileIcon(ctx context.Context, accountID int64, iconID *int64, at time.Time) error {
	err := r.queries.UpdateRiotAccountIcon(ctx, db.UpdateRiotAccountIconParams{
		ProfileIconID: nullInt64(iconID),
		LastCheckedAt: sql.NullTime{Time: at.UTC(), Valid: true},
		ID:            accountID,
	})
	if err != nil {
		return fmt.Errorf("failed to update profile icon: %w", err)
	}
	return nil
}

func (r *AccountRepository) NameHistory(ctx context.Context, accountID int64) ([]domain.NameChange, error) {
	rows, err := r.queries.ListUsernameHistoryByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list username history: %w", err)
	}

	result := make([]domain.NameChange, len(rows))
	for i, row := range rows {
		result[i] = domain.NameChange{
			ID:          row.ID,
			AccountID:   row.AccountID,
			OldGameName: row.OldGameName,
			OldTagLine:  row.OldTagLine,
			ChangedAt:   row.ChangedAt,
		}
	}
	return result, nil
}

func toTrackedAccount(row db.RiotAccount) domain.TrackedAccount {
	account := domain.TrackedAccount{
		ID:            row.ID,
		PlayerID:      row.PlayerID,
		Puuid:         row.Puuid,
		GameName:      row.GameName,
		TagLine:       row.TagLine,
		Slug:          row.RiotSlug,
		ProfileIconID: int64Ptr(row.ProfileIconID),
	}
	if row.LastCheckedAt.Valid {
		t := row.LastCheckedAt.Time
		account.LastCheckedAt = &t
	}
	return account
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
