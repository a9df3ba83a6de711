package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-engine/internal/view"
)

type gameResponse struct {
	Token string     `json:"token,omitempty"`
	Game  *view.Game `json:"game"`
}

type moveRequest struct {
	Cell *int `json:"cell"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleNewGame")

	session, err := that.gameUseCase.NewSession(r.Context())
	if err != nil {
		log.Error("failed to create session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create a new game")
		return
	}

	token, err := that.authService.GenerateToken(session.ID)
	if err != nil {
		log.Error("failed to generate token", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create a new game")
		return
	}

	writeJSON(w, http.StatusCreated, gameResponse{Token: token, Game: view.New(session, nil)})
}

func (that *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	session, err := that.gameUseCase.GetSession(r.Context(), sessionFromContext(r.Context()))
	if err != nil {
		that.writeUseCaseError(w, "handleGetGame", err)
		return
	}

	writeJSON(w, http.StatusOK, gameResponse{Game: view.New(session, nil)})
}

// handleMove - a rejected move answers 409 with the unchanged board and the reason.
func (that *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Cell == nil {
		writeError(w, http.StatusBadRequest, "cell is required")
		return
	}

	session, outcome, err := that.gameUseCase.MakeTurn(r.Context(), sessionFromContext(r.Context()), *req.Cell)
	if err != nil {
		that.writeUseCaseError(w, "handleMove", err)
		return
	}

	status := http.StatusOK
	if !tictactoe.IsAccepted(outcome) {
		status = http.StatusConflict
	}

	writeJSON(w, status, gameResponse{Game: view.New(session, outcome)})
}

func (that *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	session, err := that.gameUseCase.Reset(r.Context(), sessionFromContext(r.Context()))
	if err != nil {
		that.writeUseCaseError(w, "handleReset", err)
		return
	}

	writeJSON(w, http.StatusOK, gameResponse{Game: view.New(session, nil)})
}

func (that *Server) handleEndGame(w http.ResponseWriter, r *http.Request) {
	if err := that.gameUseCase.EndSession(r.Context(), sessionFromContext(r.Context())); err != nil {
		that.writeUseCaseError(w, "handleEndGame", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *Server) writeUseCaseError(w http.ResponseWriter, method string, err error) {
	switch {
	case errors.Is(err, repository.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "game not found")
	case errors.Is(err, apperror.ErrCorruptState):
		that.logger.Warn("stored game is unreadable", "method", method, "error", err)
		writeError(w, http.StatusConflict, "game state is unreadable, reset the game")
	default:
		that.logger.Error("request failed", "method", method, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
