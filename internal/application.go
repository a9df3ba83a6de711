package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-engine/internal/config"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-engine/internal/service"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-engine/transport/rest"
	"github.com/rocketscienceinc/tictactoe-engine/transport/websocket"
)

// RunApp - runs the application until SIGINT or SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sessionRepo, closeRepo, err := newSessionRepository(ctx, log, conf)
	if err != nil {
		return err
	}
	defer closeRepo()

	authService, err := service.NewAuthService(conf.JWTSecretKey, conf.SessionTTL)
	if err != nil {
		return fmt.Errorf("could not create auth service: %w", err)
	}

	gameManager := usecase.NewGameManager(logger, sessionRepo)

	restServer := rest.New(logger, gameManager, authService, conf.AllowedOrigins)
	wsServer := websocket.New(logger, gameManager, authService, conf.AllowedOrigins)

	// closeRepo is deferred above, so it only runs after both servers have drained.
	return runServers(ctx, log,
		server{
			name:  "HTTP server",
			port:  conf.HTTPPort,
			start: restServer.Start,
		},
		server{
			name:  "WebSocket server",
			port:  conf.SocketPort,
			start: wsServer.Start,
		},
	)
}

type server struct {
	name  string
	port  string
	start func(ctx context.Context, port string) error
}

// runServers - runs every server until ctx is canceled or one of them fails, then
// stops the rest. It returns only after every start function has returned.
func runServers(ctx context.Context, log *slog.Logger, servers ...server) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(servers))

	for _, srv := range servers {
		srv := srv
		go func() {
			log.Info("Starting "+srv.name, "port", srv.port)

			if err := srv.start(ctx, srv.port); err != nil {
				errCh <- fmt.Errorf("%s error: %w", srv.name, err)
				return
			}

			log.Info(srv.name + " stopped")
			errCh <- nil
		}()
	}

	var firstErr error

	for range servers {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}

		// one server stopping stops the others
		cancel()
	}

	return firstErr
}

func newSessionRepository(ctx context.Context, log *slog.Logger, conf *config.Config) (repository.SessionRepository, func(), error) {
	if conf.Storage != config.StorageRedis {
		log.Info("Using in-memory session storage", "ttl", conf.SessionTTL)
		return repository.NewMemorySessionRepository(conf.SessionTTL), func() {}, nil
	}

	redisStorage, err := storage.NewRedis(ctx, storage.RedisOptions{
		Addr:     conf.Redis.GetRedisAddr(),
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	log.Info("Using redis session storage", "addr", conf.Redis.GetRedisAddr(), "ttl", conf.SessionTTL)

	closeFn := func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}

	return repository.NewSessionRepository(redisStorage, conf.SessionTTL), closeFn, nil
}
