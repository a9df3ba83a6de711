package entity

import "time"

type Mark string

const (
	EmptyCell Mark = ""
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
)

// IsPlayer reports whether the mark is one of the two player symbols.
func (that Mark) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

// Opponent returns the other player's mark. EmptyCell has no opponent.
func (that Mark) Opponent() Mark {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return EmptyCell
	}
}

type Status string

const (
	StatusOngoing Status = "ongoing"
	StatusWon     Status = "won"
	StatusDraw    Status = "draw"
)

func (that Status) IsTerminal() bool {
	return that == StatusWon || that == StatusDraw
}

func (that Status) IsKnown() bool {
	return that == StatusOngoing || that.IsTerminal()
}

const (
	BoardSide = 3
	BoardSize = BoardSide * BoardSide
)

// Board is the 3x3 grid in row-major order, index = row*3+col.
type Board [BoardSize]Mark

// WinLine is a triplet of board indices.
type WinLine [3]int

// WinLines - rows, then columns, then the two diagonals. The order decides which
// line is reported when scanning a board.
var WinLines = [...]WinLine{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// FindWinLine returns the first line whose three cells hold the same player mark.
func (that Board) FindWinLine() (WinLine, Mark, bool) {
	for _, line := range WinLines {
		a, b, c := that[line[0]], that[line[1]], that[line[2]]
		if a != EmptyCell && a == b && b == c {
			return line, a, true
		}
	}

	return WinLine{}, EmptyCell, false
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

func (that Board) EmptyCells() []int {
	cells := make([]int, 0, len(that))
	for i, cell := range that {
		if cell == EmptyCell {
			cells = append(cells, i)
		}
	}

	return cells
}

// Count returns how many cells hold the given mark.
func (that Board) Count(mark Mark) int {
	count := 0
	for _, cell := range that {
		if cell == mark {
			count++
		}
	}

	return count
}

// GameState is a serializable copy of the engine state.
type GameState struct {
	Board  Board    `json:"board"`
	Turn   Mark     `json:"turn"`
	Status Status   `json:"status"`
	Winner Mark     `json:"winner,omitempty"`
	Line   *WinLine `json:"line,omitempty"`
}

func NewGameState() GameState {
	return GameState{
		Turn:   PlayerX,
		Status: StatusOngoing,
	}
}

// Session binds one game to one client of the presentation layer.
type Session struct {
	ID        string    `json:"id"`
	Game      GameState `json:"game"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Game:      NewGameState(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
