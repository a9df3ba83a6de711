package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-engine/internal/view"
)

// handleConnect attaches the connection to a session. A valid token resumes its
// session; no token, or a token whose session has expired, starts a new one.
func (that *Server) handleConnect(ctx context.Context, client *peer, msg *Message) error {
	log := that.logger.With("method", "handleConnect")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(ctx, client, msg.Action, "invalid payload")
	}

	var session *entity.Session

	if payloadReq.Token != "" {
		sessionID, parseErr := that.authService.ParseToken(payloadReq.Token)
		if parseErr != nil {
			log.Debug("rejected session token", "error", parseErr)
			return that.sendErrorResponse(ctx, client, msg.Action, "invalid session token")
		}

		session, err = that.gameUseCase.GetSession(ctx, sessionID)
		if err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
			log.Error("failed to resume session", "sessionID", sessionID, "error", err)
			return that.sendErrorResponse(ctx, client, msg.Action, "failed to resume the game")
		}
	}

	token := payloadReq.Token

	if session == nil {
		session, err = that.gameUseCase.NewSession(ctx)
		if err != nil {
			log.Error("failed to create session", "error", err)
			return that.sendErrorResponse(ctx, client, msg.Action, "failed to create a new game")
		}

		token, err = that.authService.GenerateToken(session.ID)
		if err != nil {
			log.Error("failed to generate token", "error", err)
			return that.sendErrorResponse(ctx, client, msg.Action, "failed to create a new game")
		}
	}

	client.sessionID = session.ID

	log.Info("successfully connected", "sessionID", session.ID)

	return that.sendMessage(ctx, client, msg.Action, ResponsePayload{
		Token: token,
		Game:  view.New(session, nil),
	})
}

func (that *Server) handleGameState(ctx context.Context, client *peer, msg *Message) error {
	session, err := that.gameUseCase.GetSession(ctx, client.sessionID)
	if err != nil {
		return that.sendUseCaseError(ctx, client, msg.Action, err)
	}

	return that.sendMessage(ctx, client, msg.Action, ResponsePayload{Game: view.New(session, nil)})
}

func (that *Server) handleGameTurn(ctx context.Context, client *peer, msg *Message) error {
	payloadReq, err := decodePayload(msg)
	if err != nil || payloadReq.Cell == nil {
		return that.sendErrorResponse(ctx, client, msg.Action, "cell is required")
	}

	session, outcome, err := that.gameUseCase.MakeTurn(ctx, client.sessionID, *payloadReq.Cell)
	if err != nil {
		return that.sendUseCaseError(ctx, client, msg.Action, err)
	}

	payloadResp := ResponsePayload{Game: view.New(session, outcome)}
	if rejected, ok := outcome.(tictactoe.Rejected); ok {
		payloadResp.Error = rejected.Reason.Error()
	}

	return that.sendMessage(ctx, client, msg.Action, payloadResp)
}

func (that *Server) handleGameReset(ctx context.Context, client *peer, msg *Message) error {
	session, err := that.gameUseCase.Reset(ctx, client.sessionID)
	if err != nil {
		return that.sendUseCaseError(ctx, client, msg.Action, err)
	}

	return that.sendMessage(ctx, client, msg.Action, ResponsePayload{Game: view.New(session, nil)})
}

// handleGameLeave ends the session. The connection stays open and may connect again.
func (that *Server) handleGameLeave(ctx context.Context, client *peer, msg *Message) error {
	sessionID := client.sessionID
	client.sessionID = ""

	if err := that.gameUseCase.EndSession(ctx, sessionID); err != nil {
		return that.sendUseCaseError(ctx, client, msg.Action, err)
	}

	that.logger.Info("player left", "method", "handleGameLeave", "sessionID", sessionID)

	return that.sendMessage(ctx, client, msg.Action, ResponsePayload{})
}

func (that *Server) sendUseCaseError(ctx context.Context, client *peer, action string, err error) error {
	log := that.logger.With("method", "sendUseCaseError", "action", action, "sessionID", client.sessionID)

	var errorMsg string

	switch {
	case errors.Is(err, repository.ErrSessionNotFound):
		errorMsg = "game not found"
	case errors.Is(err, apperror.ErrCorruptState):
		log.Warn("stored game is unreadable", "error", err)
		errorMsg = "game state is unreadable, reset the game"
	default:
		log.Error("request failed", "error", err)
		errorMsg = fmt.Sprintf("failed to %s", action)
	}

	return that.sendErrorResponse(ctx, client, action, errorMsg)
}
