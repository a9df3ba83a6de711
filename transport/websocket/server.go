package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

const (
	shutdownTimeout = 5 * time.Second
	readLimit       = 4 << 10
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

type handlerFunc func(ctx context.Context, client *peer, msg *Message) error

// peer is one websocket connection. Only its read loop writes to it.
type peer struct {
	conn      *websocket.Conn
	sessionID string
}

type Server struct {
	logger *slog.Logger

	gameUseCase    gameUseCase
	authService    authService
	originPatterns []string

	handlers map[string]handlerFunc

	// conns counts live connections, http.Server.Shutdown does not wait for hijacked ones.
	conns sync.WaitGroup
}

func New(logger *slog.Logger, gameUseCase gameUseCase, authService authService, originPatterns []string) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),

		gameUseCase:    gameUseCase,
		authService:    authService,
		originPatterns: originPatterns,

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionGameState] = server.requireSession(server.handleGameState)
	server.handlers[actionGameTurn] = server.requireSession(server.handleGameTurn)
	server.handlers[actionGameReset] = server.requireSession(server.handleGameReset)
	server.handlers[actionGameLeave] = server.requireSession(server.handleGameLeave)

	return server
}

// Handler returns the http handler serving /ws.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWS)

	return mux
}

// Start - starts WebSocket server and blocks until ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return that.Serve(ctx, listener)
}

// Serve - serves websocket connections on listener. Canceling ctx closes every open
// connection; Serve returns once their read loops have exited.
func (that *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
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
	that.conns.Wait()

	return nil
}

// serveWS - upgrades the connection and runs its read loop.
func (that *Server) serveWS(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveWS")

	that.conns.Add(1)
	defer that.conns.Done()

	conn, err := websocket.Accept(writer, req, &websocket.AcceptOptions{
		OriginPatterns: that.originPatterns,
	})
	if err != nil {
		log.Error("failed to accept websocket", "error", err)
		return
	}
	defer conn.CloseNow()

	conn.SetReadLimit(readLimit)

	log.Info("WebSocket connection established")

	client := &peer{conn: conn}

	err = that.handleMessages(req.Context(), client)

	if isDisconnect(err) {
		log.Info("WebSocket connection closed", "reason", err, "sessionID", client.sessionID)
		return
	}

	log.Error("error handling messages", "error", err, "sessionID", client.sessionID)
}

// isDisconnect reports whether err only means the peer went away, with or without a
// close frame, or the server is shutting down.
func isDisconnect(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway, websocket.StatusNoStatusRcvd:
		return true
	}

	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, context.Canceled)
}

// handleMessages - processes messages from the client until the connection drops.
func (that *Server) handleMessages(ctx context.Context, client *peer) error {
	log := that.logger.With("method", "handleMessages")

	for {
		_, data, err := client.conn.Read(ctx)
		if err != nil {
			return err
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Debug("failed to unmarshal message", "error", err)

			if err = that.sendErrorResponse(ctx, client, "", "message is not valid JSON"); err != nil {
				return err
			}
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			if err = that.sendErrorResponse(ctx, client, message.Action, "unknown action"); err != nil {
				return err
			}
			continue
		}

		// a started action finishes even if the connection is being torn down
		if err = handler(context.WithoutCancel(ctx), client, &message); err != nil {
			return fmt.Errorf("failed to process %s: %w", message.Action, err)
		}
	}
}

func (that *Server) requireSession(next handlerFunc) handlerFunc {
	return func(ctx context.Context, client *peer, msg *Message) error {
		if client.sessionID == "" {
			return that.sendErrorResponse(ctx, client, msg.Action, "not connected to a game")
		}

		return next(ctx, client, msg)
	}
}
