package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/playperu/guessactor/internal/catalog"
	"github.com/playperu/guessactor/internal/events"
	"github.com/playperu/guessactor/internal/game"
	"github.com/playperu/guessactor/internal/handler/health"
	"github.com/playperu/guessactor/internal/store"
)

// PlayerStore issues and resolves player tokens.
type PlayerStore interface {
	Register(ctx context.Context) (store.Player, error)
	PlayerFromToken(ctx context.Context, token string) (string, error)
}

// AdminStore authenticates dashboard users.
type AdminStore interface {
	Authenticate(ctx context.Context, email, password string) (store.Admin, error)
	CreateSession(ctx context.Context, adminID string) (string, error)
	DeleteSession(ctx context.Context, sessionID string) error
	AdminFromSession(ctx context.Context, sessionID string) (store.Admin, error)
}

// Deps are the collaborators the HTTP API serves.
type Deps struct {
	Sessions *game.Sessions
	Catalog  *catalog.Catalog
	Players  PlayerStore
	Admins   AdminStore
	Hub      *events.Hub
	Health   map[string]health.Checker
	SPADir   string
}

type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

func New(addr string, logger *slog.Logger, deps Deps) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           newRouter(logger, deps),
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

func newRouter(logger *slog.Logger, deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newStructuredLogger(logger))
	r.Use(middleware.Recoverer)

	addRoutes(r, logger, deps)
	return r
}

func (s *Server) Run(_ context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}

	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func newStructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
