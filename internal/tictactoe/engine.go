package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// Engine owns the state of a single game. It is not safe for concurrent use;
// callers serialize access to an instance.
type Engine struct {
	board  entity.Board
	turn   entity.Mark
	status entity.Status
	winner entity.Mark
	line   entity.WinLine
}

func New() *Engine {
	engine := &Engine{}
	engine.Reset()

	return engine
}

// Reset - empties the board and gives the first move to X.
func (that *Engine) Reset() {
	that.board = entity.Board{}
	that.turn = entity.PlayerX
	that.status = entity.StatusOngoing
	that.winner = entity.EmptyCell
	that.line = entity.WinLine{}
}

// AttemptMove places the active player's mark on cell. Illegal moves, including
// an out-of-range cell, return Rejected and leave the engine untouched.
func (that *Engine) AttemptMove(cell int) Outcome {
	if err := that.validateMove(cell); err != nil {
		return Rejected{Reason: err}
	}

	mark := that.turn
	that.board[cell] = mark

	return that.updateGameStatus(cell, mark)
}

// validateMove - checks if the move is valid.
func (that *Engine) validateMove(cell int) error {
	if that.status != entity.StatusOngoing {
		return apperror.ErrGameFinished
	}

	if cell < 0 || cell >= len(that.board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that.board[cell] != entity.EmptyCell {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	return nil
}

// updateGameStatus - checks the game status after a move. Win is checked before draw.
func (that *Engine) updateGameStatus(cell int, mark entity.Mark) Outcome {
	if line, winner, ok := that.board.FindWinLine(); ok {
		that.status = entity.StatusWon
		that.winner = winner
		that.line = line

		return Win{Cell: cell, Player: winner, Line: line}
	}

	if that.board.IsFull() {
		that.status = entity.StatusDraw

		return Draw{Cell: cell, Mark: mark}
	}

	that.turn = mark.Opponent()

	return Continue{Cell: cell, Mark: mark, Next: that.turn}
}

func (that *Engine) Board() entity.Board {
	return that.board
}

// ActivePlayer returns whose turn it is. After a win it stays on the winner.
func (that *Engine) ActivePlayer() entity.Mark {
	return that.turn
}

func (that *Engine) Status() entity.Status {
	return that.status
}

func (that *Engine) IsOngoing() bool {
	return that.status == entity.StatusOngoing
}

// Winner returns the winning mark and line when the game is won.
func (that *Engine) Winner() (entity.Mark, entity.WinLine, bool) {
	if that.status != entity.StatusWon {
		return entity.EmptyCell, entity.WinLine{}, false
	}

	return that.winner, that.line, true
}

func (that *Engine) Snapshot() entity.GameState {
	state := entity.GameState{
		Board:  that.board,
		Turn:   that.turn,
		Status: that.status,
	}

	if that.status == entity.StatusWon {
		line := that.line
		state.Winner = that.winner
		state.Line = &line
	}

	return state
}

// Restore rebuilds an engine from a snapshot. The stored status must agree with
// what the board itself says, otherwise apperror.ErrCorruptState is returned.
func Restore(state entity.GameState) (*Engine, error) {
	if err := validateState(state); err != nil {
		return nil, err
	}

	engine := &Engine{
		board:  state.Board,
		turn:   state.Turn,
		status: state.Status,
	}

	if state.Status == entity.StatusWon {
		engine.winner = state.Winner
		engine.line = *state.Line
	}

	return engine, nil
}

func validateState(state entity.GameState) error {
	for i, cell := range state.Board {
		if cell != entity.EmptyCell && !cell.IsPlayer() {
			return fmt.Errorf("%w: unknown mark %q at cell %d", apperror.ErrCorruptState, cell, i)
		}
	}

	if !state.Turn.IsPlayer() {
		return fmt.Errorf("%w: unknown turn %q", apperror.ErrCorruptState, state.Turn)
	}

	line, winner, won := state.Board.FindWinLine()

	switch state.Status {
	case entity.StatusWon:
		if !won || state.Line == nil || *state.Line != line || state.Winner != winner {
			return fmt.Errorf("%w: board does not match the recorded win", apperror.ErrCorruptState)
		}
	case entity.StatusDraw:
		if won || !state.Board.IsFull() {
			return fmt.Errorf("%w: board is not a draw", apperror.ErrCorruptState)
		}
	case entity.StatusOngoing:
		if won || state.Board.IsFull() {
			return fmt.Errorf("%w: finished board recorded as ongoing", apperror.ErrCorruptState)
		}
	default:
		return fmt.Errorf("%w: unknown status %q", apperror.ErrCorruptState, state.Status)
	}

	// X moves first, so X is level with O or one mark ahead.
	crosses, noughts := state.Board.Count(entity.PlayerX), state.Board.Count(entity.PlayerO)
	if crosses != noughts && crosses != noughts+1 {
		return fmt.Errorf("%w: %d X marks against %d O marks", apperror.ErrCorruptState, crosses, noughts)
	}

	next := entity.PlayerX
	if crosses > noughts {
		next = entity.PlayerO
	}

	// a finished game keeps the turn on the player who made the last move
	expectedTurn := next
	if state.Status.IsTerminal() {
		expectedTurn = next.Opponent()
	}

	if state.Turn != expectedTurn {
		return fmt.Errorf("%w: turn %s does not follow %d X and %d O marks", apperror.ErrCorruptState, state.Turn, crosses, noughts)
	}

	if state.Status == entity.StatusWon && state.Winner != state.Turn {
		return fmt.Errorf("%w: winner %s did not make the last move", apperror.ErrCorruptState, state.Winner)
	}

	return nil
}
