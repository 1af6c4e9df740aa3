package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"roster-sync/internal/config"
	"roster-sync/internal/constants"
	"roster-sync/internal/metrics"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

// Endpoint labels used in errors, logs and metrics.
const (
	EndpointAccount  = "account"
	EndpointSummoner = "summoner"
	EndpointLeague   = "league"
)

type RiotClient struct {
	apiKey      string
	regionalURL string
	platformURL string
	timeout     time.Duration
	client      *fasthttp.Client
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker[[]byte]
	metrics     *metrics.Metrics
	logger      zerolog.Logger
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

// RateLimitInfo holds the last rate-limit headers Riot sent back.
type RateLimitInfo struct {
	AppLimit    string `json:"app_limit"`
	AppCount    string `json:"app_count"`
	MethodLimit string `json:"method_limit"`
	MethodCount string `json:"method_count"`

	// seconds, from the last 429
	RetryAfter int `json:"retry_after"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewRiotClient(cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) *RiotClient {
	c := &RiotClient{
		apiKey:      cfg.RiotAPIKey,
		regionalURL: cfg.RiotRegionalURL,
		platformURL: cfg.RiotPlatformURL,
		timeout:     cfg.RiotTimeout,
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         cfg.RiotTimeout,
			WriteTimeout:        cfg.RiotTimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RiotRequestsPerSecond), cfg.RiotBurst),
		metrics: m,
		logger:  logger.With().Str("component", "riot_client").Logger(),
	}

	failures := cfg.RiotBreakerFailures
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "riot",
		MaxRequests: 1,
		Timeout:     cfg.RiotBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return failures > 0 && counts.ConsecutiveFailures >= failures
		},
		// 403/404 describe the account or the key, not the health of the API.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
	return c
}

func (c *RiotClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *RiotClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if v := string(resp.Header.Peek("X-App-Rate-Limit")); v != "" {
		c.rateLimit.AppLimit = v
	}
	if v := string(resp.Header.Peek("X-App-Rate-Limit-Count")); v != "" {
		c.rateLimit.AppCount = v
	}
	if v := string(resp.Header.Peek("X-Method-Rate-Limit")); v != "" {
		c.rateLimit.MethodLimit = v
	}
	if v := string(resp.Header.Peek("X-Method-Rate-Limit-Count")); v != "" {
		c.rateLimit.MethodCount = v
	}
	if v := string(resp.Header.Peek("Retry-After")); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			c.rateLimit.RetryAfter = val
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

func (c *RiotClient) AccountByPUUID(ctx context.Context, puuid string) (*AccountResponse, error) {
	u := fmt.Sprintf("%s/riot/account/v1/accounts/by-puuid/%s", c.regionalURL, url.PathEscape(puuid))
	account, err := doRequest[AccountResponse](ctx, c, EndpointAccount, u)
	if err != nil {
		return nil, err
	}
	if account.GameName == "" || account.TagLine == "" {
		return nil, transientError(EndpointAccount, ErrMissingRiotID)
	}
	return account, nil
}

func (c *RiotClient) SummonerByPUUID(ctx context.Context, puuid string) (*SummonerResponse, error) {
	u := fmt.Sprintf("%s/lol/summoner/v4/summoners/by-puuid/%s", c.platformURL, url.PathEscape(puuid))
	return doRequest[SummonerResponse](ctx, c, EndpointSummoner, u)
}

func (c *RiotClient) LeagueEntriesBySummoner(ctx context.Context, summonerID string) ([]LeagueEntry, error) {
	u := fmt.Sprintf("%s/lol/league/v4/entries/by-summoner/%s", c.platformURL, url.PathEscape(summonerID))
	entries, err := doRequest[[]LeagueEntry](ctx, c, EndpointLeague, u)
	if err != nil {
		return nil, err
	}
	return *entries, nil
}

func doRequest[T any](ctx context.Context, client *RiotClient, endpoint, rawURL string) (*T, error) {
	body, err := client.breaker.Execute(func() ([]byte, error) {
		return client.fetch(ctx, endpoint, rawURL)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, transientError(endpoint, err)
		}
		return nil, err
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, transientError(endpoint, fmt.Errorf("failed to decode response: %w", err))
	}
	return &result, nil
}

func (c *RiotClient) fetch(ctx context.Context, endpoint, rawURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, transientError(endpoint, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(rawURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(constants.RiotTokenHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	start := time.Now()
	err := c.client.DoDeadline(req, resp, deadline)
	if err != nil {
		c.metrics.RiotRequest(endpoint, 0, time.Since(start))
		c.logger.Debug().Err(err).Str("endpoint", endpoint).Msg("riot request failed")
		return nil, transientError(endpoint, err)
	}

	code := resp.StatusCode()
	c.metrics.RiotRequest(endpoint, code, time.Since(start))
	c.updateRateLimit(resp)

	if code != fasthttp.StatusOK {
		var retryAfter time.Duration
		if secs, err := strconv.Atoi(string(resp.Header.Peek("Retry-After"))); err == nil {
			retryAfter = time.Duration(secs) * time.Second
		}
		return nil, statusError(endpoint, code, retryAfter, resp.Body())
	}

	return append([]byte(nil), resp.Body()...), nil
}

type AccountResponse struct {
	Puuid    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

type SummonerResponse struct {
	ID            string `json:"id"`
	Puuid         string `json:"puuid"`
	ProfileIconID int64  `json:"profileIconId"`
	SummonerLevel int64  `json:"summonerLevel"`
	RevisionDate  int64  `json:"revisionDate"`
}

type LeagueEntry struct {
	LeagueID     string `json:"leagueId"`
	SummonerID   string `json:"summonerId"`
	Puuid        string `json:"puuid"`
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	HotStreak    bool   `json:"hotStreak"`
	Veteran      bool   `json:"veteran"`
	FreshBlood   bool   `json:"freshBlood"`
	Inactive     bool   `json:"inactive"`
}

// SoloQueueEntry picks the ranked solo-queue entry, if any.
func SoloQueueEntry(entries []LeagueEntry) (LeagueEntry, bool) {
	for _, e := range entries {
		if e.QueueType == constants.RankedSoloQueue {
			return e, true
		}
	}
	return LeagueEntry{}, false
}
