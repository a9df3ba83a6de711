package tictactoe

import "github.com/rocketscienceinc/tictactoe-engine/internal/entity"

type OutcomeKind string

const (
	KindRejected OutcomeKind = "rejected"
	KindContinue OutcomeKind = "continue"
	KindWin      OutcomeKind = "win"
	KindDraw     OutcomeKind = "draw"
)

// Outcome is the result of AttemptMove. The set of implementations is closed:
// Rejected, Continue, Win and Draw.
type Outcome interface {
	Kind() OutcomeKind
	sealed()
}

// Rejected - the move was not applied. Reason wraps one of
// apperror.ErrGameFinished, apperror.ErrInvalidCell or apperror.ErrCellOccupied.
type Rejected struct {
	Reason error
}

// Continue - the move was applied and Next is to play.
type Continue struct {
	Cell int
	Mark entity.Mark
	Next entity.Mark
}

// Win - the move completed Line for Player.
type Win struct {
	Cell   int
	Player entity.Mark
	Line   entity.WinLine
}

// Draw - the move filled the last cell without completing a line.
type Draw struct {
	Cell int
	Mark entity.Mark
}

func (Rejected) Kind() OutcomeKind { return KindRejected }
func (Continue) Kind() OutcomeKind { return KindContinue }
func (Win) Kind() OutcomeKind      { return KindWin }
func (Draw) Kind() OutcomeKind     { return KindDraw }

func (Rejected) sealed() {}
func (Continue) sealed() {}
func (Win) sealed()      {}
func (Draw) sealed()     {}

func (that Rejected) Error() string {
	if that.Reason == nil {
		return "move rejected"
	}
	return "move rejected: " + that.Reason.Error()
}

func (that Rejected) Unwrap() error {
	return that.Reason
}

// IsAccepted reports whether the outcome changed the board.
func IsAccepted(outcome Outcome) bool {
	if outcome == nil {
		return false
	}
	return outcome.Kind() != KindRejected
}
