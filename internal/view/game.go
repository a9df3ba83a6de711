package view

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

const (
	ToneInfo    = "primary"
	ToneSuccess = "success"
	ToneWarning = "warning"
	ToneDanger  = "danger"
)

// Badge is the short status label shown next to the board.
type Badge struct {
	Text string `json:"text"`
	Tone string `json:"tone"`
}

// Notice is the one-off alert shown when the game ends or a move is refused.
type Notice struct {
	Text string `json:"text"`
	Tone string `json:"tone"`
}

// Game is everything a client needs to draw the board. Cells hold "X", "O" or "".
type Game struct {
	SessionID string                   `json:"sessionId"`
	Cells     [entity.BoardSize]string `json:"cells"`
	Turn      string                   `json:"turn"`
	Status    string                   `json:"status"`
	Winner    string                   `json:"winner,omitempty"`
	Line      []int                    `json:"line,omitempty"`
	Locked    bool                     `json:"locked"`
	Badge     Badge                    `json:"badge"`
	Notice    *Notice                  `json:"notice,omitempty"`
	Outcome   string                   `json:"outcome,omitempty"`
	Reason    string                   `json:"reason,omitempty"`
}

// New renders the session. outcome is the result of the move that produced the
// session and may be nil, e.g. for a state query or right after a reset.
func New(session *entity.Session, outcome tictactoe.Outcome) *Game {
	state := session.Game

	game := &Game{
		SessionID: session.ID,
		Turn:      string(state.Turn),
		Status:    string(state.Status),
		Winner:    string(state.Winner),
		Locked:    state.Status.IsTerminal(),
		Badge:     badge(state),
	}

	for i, mark := range state.Board {
		game.Cells[i] = string(mark)
	}

	if state.Status == entity.StatusWon && state.Line != nil {
		line := *state.Line
		game.Line = line[:]
	}

	switch state.Status {
	case entity.StatusWon:
		game.Notice = &Notice{Text: fmt.Sprintf("%s wins! 🎉", state.Winner), Tone: ToneSuccess}
	case entity.StatusDraw:
		game.Notice = &Notice{Text: "It's a draw. Cat's game!", Tone: ToneWarning}
	}

	if outcome != nil {
		game.Outcome = string(outcome.Kind())

		if rejected, ok := outcome.(tictactoe.Rejected); ok && rejected.Reason != nil {
			game.Reason = rejected.Reason.Error()
			if !game.Locked {
				game.Notice = &Notice{Text: game.Reason, Tone: ToneDanger}
			}
		}
	}

	return game
}

func badge(state entity.GameState) Badge {
	switch state.Status {
	case entity.StatusWon:
		return Badge{Text: fmt.Sprintf("%s wins", state.Winner), Tone: ToneSuccess}
	case entity.StatusDraw:
		return Badge{Text: "Draw", Tone: ToneWarning}
	default:
		return Badge{Text: fmt.Sprintf("%s's Turn", state.Turn), Tone: ToneInfo}
	}
}
