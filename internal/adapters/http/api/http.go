// Package api declares the quiz HTTP contract and its route registration.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/okian/lovequiz/internal/domain/types"
	"github.com/okian/lovequiz/pkg/logger"
)

const maxBodyBytes = 4 << 10

// Sessions is the session service as seen by the HTTP layer.
type Sessions interface {
	Create(ctx context.Context) (types.Snapshot, error)
	Snapshot(ctx context.Context, id string) (types.Snapshot, error)
	End(ctx context.Context, id string) error
	SubmitName(ctx context.Context, id, input string) (types.Snapshot, error)
	SubmitPartner(ctx context.Context, id, input string) (types.Snapshot, error)
	InputChanged(ctx context.Context, id string) (types.Snapshot, error)
	Decline(ctx context.Context, id, gesture string) (types.Decline, error)
	Accept(ctx context.Context, id string) (types.Snapshot, error)
	SetAffection(ctx context.Context, id string, value int) (types.Snapshot, error)
	ConfirmAffection(ctx context.Context, id string) (types.Snapshot, error)
	Reveal(ctx context.Context, id string) (types.Snapshot, error)
	Restart(ctx context.Context, id string) (types.Snapshot, error)
	ToggleMusic(ctx context.Context, id string) (types.Snapshot, error)
	ReportMusicFailure(ctx context.Context, id, reason string) (types.Snapshot, error)
	Share(ctx context.Context, id string) (types.Share, error)
	ScoreMessage(score int) types.ScoreMessage
}

// Server wires HTTP routes for the quiz API.
type Server struct {
	sessions      Sessions
	healthHandler *HealthHandler
	statsHandler  *StatsHandler

	cookieSecure bool
	cookieMaxAge time.Duration

	logger logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(sessions Sessions, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		sessions:      sessions,
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		cookieMaxAge:  defaultCookieMaxAge,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("http")
	}
	return s
}

// Handler builds the root router: shared middleware, the API routes and
// any extra route sets (docs, site) mounted after them.
func (s *Server) Handler(mounts ...func(chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(RequestLogger(s.logger))

	s.Register(r)
	for _, mount := range mounts {
		mount(r)
	}
	return r
}

// Register attaches all API routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)
	r.Get("/api/score-message", s.handleScoreMessage)

	r.Route("/api/session", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.withSession(s.handleSnapshot))
		r.Delete("/", s.withSession(s.handleEnd))
		r.Post("/name", s.withSession(s.handleName))
		r.Post("/partner", s.withSession(s.handlePartner))
		r.Post("/input", s.withSession(s.handleInput))
		r.Post("/decline", s.withSession(s.handleDecline))
		r.Post("/accept", s.withSession(s.handleAccept))
		r.Put("/affection", s.withSession(s.handleAffection))
		r.Post("/confirm", s.withSession(s.handleConfirm))
		r.Post("/reveal", s.withSession(s.handleReveal))
		r.Post("/restart", s.withSession(s.handleRestart))
		r.Post("/music/toggle", s.withSession(s.handleMusicToggle))
		r.Post("/music/failure", s.withSession(s.handleMusicFailure))
		r.Get("/share", s.withSession(s.handleShare))
	})
}

// decodeBody reads a small JSON body into v. An empty body leaves v untouched
// when optional is true.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err. state is attached when the failed operation left a
// session behind.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, state *types.Snapshot) {
	status, code, msg := statusFor(err)
	if status >= statusInternalError {
		s.logger.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
	}
	writeJSON(w, status, types.ErrorBody{Code: code, Message: msg, State: state})
}
