// Package web exposes the study scheduler over a JSON HTTP API.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/Tangorin-AP/genius-next-sub000/internal/config"
	"github.com/Tangorin-AP/genius-next-sub000/internal/domain"
	"github.com/Tangorin-AP/genius-next-sub000/internal/storage"
)

// Store is the storage surface the handlers need. *storage.DB
// implements it; tests substitute a fake.
type Store interface {
	ListDecks(ctx context.Context) ([]storage.Deck, error)
	SessionCards(ctx context.Context, deckID string, dir domain.Direction) ([]*domain.SessionCard, error)
	Association(ctx context.Context, id string) (*domain.Association, string, error)
	UpdateAssociationState(ctx context.Context, id string, score domain.Score, dueAt *time.Time, firstTime bool) error
}

// SyncFunc triggers a reconcile pass over all deck sources.
type SyncFunc func(ctx context.Context) error

// Server holds the dependencies for the HTTP server.
type Server struct {
	store    Store
	router   chi.Router
	validate *validator.Validate
	defaults config.Session
	syncFn   SyncFunc
	now      func() time.Time
}

// NewServer creates and configures a new server. syncFn may be nil
// when no sources are configured.
func NewServer(store Store, defaults config.Session, syncFn SyncFunc) *Server {
	s := &Server{
		store:    store,
		router:   chi.NewRouter(),
		validate: validator.New(),
		defaults: defaults,
		syncFn:   syncFn,
		now:      time.Now,
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	s.router.Get("/decks", s.handleListDecks())
	s.router.Get("/decks/{deckID}/associations", s.handleListAssociations())
	s.router.Post("/decks/{deckID}/plan", s.handlePlanSession())

	s.router.Post("/associations/{assocID}/decision", s.handleDecision())
	s.router.Post("/associations/{assocID}/restore", s.handleRestore())

	s.router.Post("/grade", s.handleGrade())
	s.router.Post("/sync", s.handleSync())
}
