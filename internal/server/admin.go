package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"roster-sync/internal/api"
	"roster-sync/internal/constants"
	"roster-sync/internal/domain"
	"roster-sync/internal/middleware"
	"roster-sync/internal/repository"
	"roster-sync/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

type SyncTrigger interface {
	Trigger(mode domain.SyncMode) (string, error)
}

type RunReporter interface {
	LastReport() *domain.RunReport
}

type RateLimitSource interface {
	GetRateLimitInfo() api.RateLimitInfo
}

type AccountReader interface {
	GetByPuuid(ctx context.Context, puuid string) (*domain.TrackedAccount, error)
	NameHistory(ctx context.Context, accountID int64) ([]domain.NameChange, error)
}

type RankHistoryReader interface {
	ListByAccount(ctx context.Context, accountID int64) ([]domain.RankSnapshot, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

// AdminServer is the operator surface: manual triggers, run status,
// per-account history, health and metrics.
type AdminServer struct {
	trigger   SyncTrigger
	reports   RunReporter
	rateLimit RateLimitSource
	accounts  AccountReader
	history   RankHistoryReader
	db        Pinger
	gatherer  prometheus.Gatherer
	logger    zerolog.Logger
}

func NewAdminServer(
	trigger SyncTrigger,
	reports RunReporter,
	rateLimit RateLimitSource,
	accounts AccountReader,
	history RankHistoryReader,
	db Pinger,
	gatherer prometheus.Gatherer,
	logger zerolog.Logger,
) *AdminServer {
	return &AdminServer{
		trigger:   trigger,
		reports:   reports,
		rateLimit: rateLimit,
		accounts:  accounts,
		history:   history,
		db:        db,
		gatherer:  gatherer,
		logger:    logger,
	}
}

func (s *AdminServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID(s.logger, "/healthz", "/metrics"))

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/sync", s.startSync)
		r.Get("/sync/last", s.lastRun)
		r.Get("/sync/ratelimit", s.rateLimitInfo)
		r.Get("/accounts/{puuid}", s.accountHistory)
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

func (s *AdminServer) startSync(w http.ResponseWriter, r *http.Request) {
	mode, ok := domain.ParseSyncMode(r.URL.Query().Get("mode"))
	if !ok {
		writeError(w, r, http.StatusBadRequest, "mode must be full or names")
		return
	}

	runID, err := s.trigger.Trigger(mode)
	switch {
	case errors.Is(err, service.ErrRunCollision):
		writeError(w, r, http.StatusConflict, err.Error())
		return
	case err != nil:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to trigger sync")
		writeError(w, r, http.StatusServiceUnavailable, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, SyncAcceptedResponse{RunID: runID, Mode: string(mode)})
}

func (s *AdminServer) lastRun(w http.ResponseWriter, r *http.Request) {
	report := s.reports.LastReport()
	if report == nil {
		writeError(w, r, http.StatusNotFound, "no sync run has completed yet")
		return
	}
	writeJSON(w, http.StatusOK, toRunReportResponse(report))
}

func (s *AdminServer) rateLimitInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.rateLimit.GetRateLimitInfo())
}

func (s *AdminServer) accountHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.DatabaseTimeout)
	defer cancel()

	account, err := s.accounts.GetByPuuid(ctx, chi.URLParam(r, "puuid"))
	if errors.Is(err, repository.ErrAccountNotFound) {
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to load account")
		writeError(w, r, http.StatusInternalServerError, "failed to load account")
		return
	}

	names, err := s.accounts.NameHistory(ctx, account.ID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to load name history")
		writeError(w, r, http.StatusInternalServerError, "failed to load name history")
		return
	}
	ranks, err := s.history.ListByAccount(ctx, account.ID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to load rank history")
		writeError(w, r, http.StatusInternalServerError, "failed to load rank history")
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account, names, ranks))
}

func (s *AdminServer) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.DatabaseTimeout)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Time: time.Now().UTC(), Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Time: time.Now().UTC()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError includes the request id in the error body.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, RequestID: middleware.GetRequestID(r.Context())})
}
