package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

const (
	handlerTimeout  = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

type gameUseCase interface {
	NewSession(ctx context.Context) (*entity.Session, error)
	GetSession(ctx context.Context, id string) (*entity.Session, error)
	MakeTurn(ctx context.Context, id string, cell int) (*entity.Session, tictactoe.Outcome, error)
	Reset(ctx context.Context, id string) (*entity.Session, error)
	EndSession(ctx context.Context, id string) error
}

type authService interface {
	GenerateToken(sessionID string) (string, error)
	ParseToken(token string) (string, error)
}

type Server struct {
	logger *slog.Logger
	router *chi.Mux

	gameUseCase gameUseCase
	authService authService
}

func New(logger *slog.Logger, gameUseCase gameUseCase, authService authService, allowedOrigins []string) *Server {
	server := &Server{
		logger: logger.With("component", "rest"),
		router: chi.NewRouter(),

		gameUseCase: gameUseCase,
		authService: authService,
	}

	server.router.Use(chimw.RequestID)
	server.router.Use(chimw.RealIP)
	server.router.Use(chimw.Recoverer)
	server.router.Use(chimw.Timeout(handlerTimeout))
	server.router.Use(jsonContentType)
	server.router.Use(cors(allowedOrigins))

	server.router.Get("/ping", pingHandler)

	server.router.Route("/game", func(r chi.Router) {
		r.Post("/", server.handleNewGame)

		r.Group(func(r chi.Router) {
			r.Use(server.requireSession)

			r.Get("/", server.handleGetGame)
			r.Delete("/", server.handleEndGame)
			r.Post("/moves", server.handleMove)
			r.Post("/reset", server.handleReset)
		})
	})

	server.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	return server
}

// Router exposes the router for tests.
func (that *Server) Router() chi.Router {
	return that.router
}

// Start - serves HTTP on port until ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return that.Serve(ctx, listener)
}

// Serve - serves HTTP on listener. After ctx is canceled it returns once in-flight
// requests have finished or the shutdown timeout has passed.
func (that *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:      that.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	shutdownDone := make(chan struct{})

	go func() {
		defer close(shutdownDone)

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}

	<-shutdownDone

	return nil
}
