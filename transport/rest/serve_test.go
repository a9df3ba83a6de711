package rest

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/service"
)

// slowGames holds NewSession open until release is closed.
type slowGames struct {
	gameUseCase

	entered chan struct{}
	release chan struct{}
}

func (that *slowGames) NewSession(_ context.Context) (*entity.Session, error) {
	close(that.entered)
	<-that.release

	return entity.NewSession("slow", time.Now().UTC()), nil
}

func TestServer_Serve(t *testing.T) {
	t.Run("Shutdown waits for in-flight requests", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))

		authService, err := service.NewAuthService("test-secret", time.Hour)
		require.NoError(t, err)

		games := &slowGames{entered: make(chan struct{}), release: make(chan struct{})}

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		served := make(chan error, 1)
		go func() { served <- New(logger, games, authService, nil).Serve(ctx, listener) }()

		// Given: a request that is still being handled
		statusCh := make(chan int, 1)
		go func() {
			resp, postErr := http.Post("http://"+listener.Addr().String()+"/game", "application/json", nil)
			if postErr != nil {
				statusCh <- 0
				return
			}
			_ = resp.Body.Close()
			statusCh <- resp.StatusCode
		}()

		select {
		case <-games.entered:
		case <-time.After(5 * time.Second):
			t.Fatal("request never reached the handler")
		}

		// When: the server context is canceled
		cancel()

		// Then: Serve does not return while the request runs
		select {
		case <-served:
			t.Fatal("Serve returned before the in-flight request finished")
		case <-time.After(200 * time.Millisecond):
		}

		// When: the handler finishes
		close(games.release)

		// Then: the client gets its answer and Serve returns cleanly
		assert.Equal(t, http.StatusCreated, <-statusCh)

		select {
		case err = <-served:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("Serve did not return after the request finished")
		}
	})
}
