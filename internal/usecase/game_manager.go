package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

type sessionRepo interface {
	Save(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

// GameManager runs one game engine per session. Calls for the same session are
// serialized; different sessions proceed independently.
type GameManager struct {
	logger      *slog.Logger
	sessionRepo sessionRepo

	locks *sessionLocks
	now   func() time.Time
}

func NewGameManager(logger *slog.Logger, sessionRepo sessionRepo) *GameManager {
	return &GameManager{
		logger:      logger.With("component", "game_manager"),
		sessionRepo: sessionRepo,

		locks: newSessionLocks(),
		now:   time.Now,
	}
}

func (that *GameManager) NewSession(ctx context.Context) (*entity.Session, error) {
	sessionID, err := pkg.GenerateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	session := entity.NewSession(sessionID, that.now().UTC())

	if err = that.sessionRepo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	that.logger.Info("session created", "method", "NewSession", "sessionID", sessionID)

	return session, nil
}

func (that *GameManager) GetSession(ctx context.Context, id string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// MakeTurn attempts a move in the session's game. A rejected move is a normal
// outcome: it returns no error and leaves the stored session untouched.
func (that *GameManager) MakeTurn(ctx context.Context, id string, cell int) (*entity.Session, tictactoe.Outcome, error) {
	log := that.logger.With("method", "MakeTurn", "sessionID", id, "cell", cell)

	unlock := that.locks.Lock(id)
	defer unlock()

	session, err := that.GetSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	engine, err := tictactoe.Restore(session.Game)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to restore game: %w", err)
	}

	outcome := engine.AttemptMove(cell)
	if rejected, ok := outcome.(tictactoe.Rejected); ok {
		log.Debug("move rejected", "reason", rejected.Reason)
		return session, outcome, nil
	}

	session.Game = engine.Snapshot()
	session.UpdatedAt = that.now().UTC()

	if err = that.sessionRepo.Save(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("failed to save session: %w", err)
	}

	switch result := outcome.(type) {
	case tictactoe.Win:
		log.Info("game won", "winner", result.Player, "line", result.Line)
	case tictactoe.Draw:
		log.Info("game drawn")
	case tictactoe.Continue:
		log.Debug("move accepted", "next", result.Next)
	}

	return session, outcome, nil
}

// Reset starts a fresh game under the same session id.
func (that *GameManager) Reset(ctx context.Context, id string) (*entity.Session, error) {
	log := that.logger.With("method", "Reset", "sessionID", id)

	unlock := that.locks.Lock(id)
	defer unlock()

	session, err := that.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	engine, err := tictactoe.Restore(session.Game)
	if err != nil {
		log.Warn("replacing unreadable game state", "error", err)
		engine = tictactoe.New()
	}
	engine.Reset()

	session.Game = engine.Snapshot()
	session.UpdatedAt = that.now().UTC()

	if err = that.sessionRepo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	log.Info("game reset")

	return session, nil
}

func (that *GameManager) EndSession(ctx context.Context, id string) error {
	unlock := that.locks.Lock(id)
	defer unlock()

	if err := that.sessionRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	that.logger.Info("session ended", "method", "EndSession", "sessionID", id)

	return nil
}
