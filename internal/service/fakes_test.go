package service_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"roster-sync/internal/api"
	"roster-sync/internal/domain"
	"roster-sync/internal/repository"
)

type fakeRiot struct {
	mu          sync.Mutex
	identities  map[string]api.AccountResponse
	identityErr map[string]error
	summonerErr map[string]error
	leagues     map[string][]api.LeagueEntry
	leagueErr   map[string]error
	calls       []string

	// when set, AccountByPUUID signals entered and waits for release
	entered chan struct{}
	release chan struct{}
}

func newFakeRiot() *fakeRiot {
	return &fakeRiot{
		identities:  map[string]api.AccountResponse{},
		identityErr: map[string]error{},
		summonerErr: map[string]error{},
		leagues:     map[string][]api.LeagueEntry{},
		leagueErr:   map[string]error{},
	}
}

func (f *fakeRiot) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeRiot) callCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (f *fakeRiot) AccountByPUUID(ctx context.Context, puuid string) (*api.AccountResponse, error) {
	f.record("account:" + puuid)
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	if err := f.identityErr[puuid]; err != nil {
		return nil, err
	}
	if id, ok := f.identities[puuid]; ok {
		return &id, nil
	}
	return &api.AccountResponse{Puuid: puuid, GameName: "name-" + puuid, TagLine: "NA1"}, nil
}

func (f *fakeRiot) SummonerByPUUID(ctx context.Context, puuid string) (*api.SummonerResponse, error) {
	f.record("summoner:" + puuid)
	if err := f.summonerErr[puuid]; err != nil {
		return nil, err
	}
	return &api.SummonerResponse{ID: "S-" + puuid, Puuid: puuid, ProfileIconID: 29}, nil
}

func (f *fakeRiot) LeagueEntriesBySummoner(ctx context.Context, summonerID string) ([]api.LeagueEntry, error) {
	f.record("league:" + summonerID)
	if err := f.leagueErr[summonerID]; err != nil {
		return nil, err
	}
	if entries, ok := f.leagues[summonerID]; ok {
		return entries, nil
	}
	return []api.LeagueEntry{{
		QueueType:    "RANKED_SOLO_5x5",
		Tier:         "SILVER",
		Rank:         "III",
		LeaguePoints: 50,
		Wins:         10,
		Losses:       9,
	}}, nil
}

type fakeAccounts struct {
	mu       sync.Mutex
	accounts []domain.TrackedAccount
	listErr  error
	applied  map[int64]domain.Identity
	icons    map[int64]int64
}

func newFakeAccounts(n int) *fakeAccounts {
	f := &fakeAccounts{applied: map[int64]domain.Identity{}, icons: map[int64]int64{}}
	for i := 1; i <= n; i++ {
		puuid := fmt.Sprintf("P%d", i)
		f.accounts = append(f.accounts, domain.TrackedAccount{
			ID:       int64(i),
			PlayerID: int64(i),
			Puuid:    puuid,
			GameName: "name-" + puuid,
			TagLine:  "NA1",
			Slug:     domain.Slug("name-"+puuid, "NA1"),
		})
	}
	return f
}

func (f *fakeAccounts) List(ctx context.Context) ([]domain.TrackedAccount, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.TrackedAccount(nil), f.accounts...), nil
}

func (f *fakeAccounts) ApplyIdentity(ctx context.Context, account domain.TrackedAccount, identity domain.Identity, at time.Time) (repository.IdentityChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied[account.ID] = identity
	prev := account.Identity()
	return repository.IdentityChange{
		Updated:  prev != identity,
		Renamed:  prev != identity,
		Previous: prev,
	}, nil
}

func (f *fakeAccounts) UpdateProfileIcon(ctx context.Context, accountID int64, iconID *int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if iconID != nil {
		f.icons[accountID] = *iconID
	}
	return nil
}

func (f *fakeAccounts) writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.applied) + len(f.icons)
}

type fakeHistory struct {
	mu        sync.Mutex
	snapshots []domain.RankSnapshot
}

func (f *fakeHistory) Append(ctx context.Context, snapshot domain.RankSnapshot) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snapshot.ID = int64(len(f.snapshots) + 1)
	f.snapshots = append(f.snapshots, snapshot)
	return snapshot.ID, nil
}

func (f *fakeHistory) Latest(ctx context.Context, accountID int64) (*domain.RankSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.snapshots) - 1; i >= 0; i-- {
		if f.snapshots[i].AccountID == accountID {
			s := f.snapshots[i]
			return &s, nil
		}
	}
	return nil, repository.ErrSnapshotNotFound
}

func (f *fakeHistory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.snapshots)
}
