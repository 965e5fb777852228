package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"mentorbill/services/mentoring"
)

const (
	sessionsCompletedTopic = "mentorship.sessions.completed"
	billsGeneratedTopic    = "mentorship.bills.generated"
)

// API wires the mentoring core, storage, and collaborators into HTTP handlers.
type API struct {
	store     *Store
	repo      *Repo
	resolver  *mentoring.Resolver
	generator *mentoring.CycleGenerator
	reaper    *mentoring.Reaper
	rooms     mentoring.RoomProvider
	config    Config
	log       zerolog.Logger
}

// New initialises the API layer. rooms may be nil when no room provider is
// configured.
func New(store *Store, cfg Config, rooms mentoring.RoomProvider, log zerolog.Logger) (*API, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if store.ORM == nil {
		return nil, errors.New("store ORM is required")
	}

	repo, err := NewRepo(store.ORM)
	if err != nil {
		return nil, err
	}
	resolver, err := mentoring.NewResolver(repo, rooms, log)
	if err != nil {
		return nil, err
	}
	generator, err := mentoring.NewCycleGenerator(repo, log)
	if err != nil {
		return nil, err
	}
	reaper, err := mentoring.NewReaper(repo, log)
	if err != nil {
		return nil, err
	}

	return &API{
		store:     store,
		repo:      repo,
		resolver:  resolver,
		generator: generator,
		reaper:    reaper,
		rooms:     rooms,
		config:    cfg,
		log:       log,
	}, nil
}

// Repo exposes the storage layer to the scheduler and CLI wiring.
func (a *API) Repo() *Repo { return a.repo }

// Generator exposes the billing cycle generator to the scheduler wiring.
func (a *API) Generator() *mentoring.CycleGenerator { return a.generator }

// Reaper exposes the stale-session reaper to the scheduler wiring.
func (a *API) Reaper() *mentoring.Reaper { return a.reaper }

// Routes constructs the chi router containing all endpoints.
func (a *API) Routes() (http.Handler, error) {
	if a == nil {
		return nil, errors.New("nil api")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	allowed := a.config.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))
	r.Use(httprate.Limit(100, time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/sessions/resolve", a.handleResolveSession)
		r.Post("/sessions/reap", a.handleReapSessions)
		r.Post("/sessions/{id}/finish", a.handleFinishSession)
		r.Post("/sessions/{id}/extend", a.handleExtendSession)
		r.Post("/mentors/{id}/activate", a.handleActivateMentor)
		r.Post("/bills/generate", a.handleGenerateBills)
		r.Post("/bills/{id}/release", a.handleReleaseBill)
		r.Post("/bills/{id}/statement", a.handleExportStatement)
		r.Get("/bills", a.handleListBills)
		r.Get("/reports/unbilled", a.handleUnbilledReport)
	})

	return r, nil
}
