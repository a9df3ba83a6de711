package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWinLines(t *testing.T) {
	t.Run("Table holds rows, columns and diagonals in order", func(t *testing.T) {
		// Given: the expected enumeration order
		expected := []WinLine{
			{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
			{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
			{0, 4, 8}, {2, 4, 6},
		}

		// Then: the table should match it exactly
		require.Equal(t, expected, WinLines[:])
	})

	t.Run("Every line has three distinct in-range cells", func(t *testing.T) {
		seen := make(map[WinLine]bool)

		for _, line := range WinLines {
			// Then: indices are on the board and not repeated
			for _, idx := range line {
				assert.GreaterOrEqual(t, idx, 0)
				assert.Less(t, idx, BoardSize)
			}
			assert.NotEqual(t, line[0], line[1])
			assert.NotEqual(t, line[1], line[2])
			assert.NotEqual(t, line[0], line[2])

			// Then: no line appears twice
			assert.False(t, seen[line], "duplicate line %v", line)
			seen[line] = true
		}
	})
}

func TestMark(t *testing.T) {
	t.Run("Opponent flips between the two players", func(t *testing.T) {
		assert.Equal(t, PlayerO, PlayerX.Opponent())
		assert.Equal(t, PlayerX, PlayerO.Opponent())
		assert.Equal(t, EmptyCell, EmptyCell.Opponent())
	})

	t.Run("IsPlayer accepts only X and O", func(t *testing.T) {
		assert.True(t, PlayerX.IsPlayer())
		assert.True(t, PlayerO.IsPlayer())
		assert.False(t, EmptyCell.IsPlayer())
		assert.False(t, Mark("Z").IsPlayer())
	})
}

func TestStatus(t *testing.T) {
	assert.False(t, StatusOngoing.IsTerminal())
	assert.True(t, StatusWon.IsTerminal())
	assert.True(t, StatusDraw.IsTerminal())
	assert.False(t, Status("finished").IsKnown())
}

func TestBoard_FindWinLine(t *testing.T) {
	t.Run("Returns the row when Player X wins", func(t *testing.T) {
		// Given: a board where Player X holds the top row
		board := Board{
			PlayerX, PlayerX, PlayerX,
			PlayerO, PlayerO, EmptyCell,
			EmptyCell, EmptyCell, EmptyCell,
		}

		// When: looking for a winning line
		line, mark, ok := board.FindWinLine()

		// Then: the top row and X should be reported
		require.True(t, ok)
		assert.Equal(t, WinLine{0, 1, 2}, line)
		assert.Equal(t, PlayerX, mark)
	})

	t.Run("Returns the anti-diagonal when Player O wins", func(t *testing.T) {
		// Given: a board where Player O holds 2-4-6
		board := Board{
			PlayerX, PlayerX, PlayerO,
			PlayerX, PlayerO, EmptyCell,
			PlayerO, EmptyCell, EmptyCell,
		}

		// When: looking for a winning line
		line, mark, ok := board.FindWinLine()

		// Then: the anti-diagonal and O should be reported
		require.True(t, ok)
		assert.Equal(t, WinLine{2, 4, 6}, line)
		assert.Equal(t, PlayerO, mark)
	})

	t.Run("Reports the first line in enumeration order", func(t *testing.T) {
		// Given: a board where X holds both row 0 and column 0
		board := Board{
			PlayerX, PlayerX, PlayerX,
			PlayerX, PlayerO, PlayerO,
			PlayerX, PlayerO, PlayerO,
		}

		// When: looking for a winning line
		line, _, ok := board.FindWinLine()

		// Then: the row wins over the column
		require.True(t, ok)
		assert.Equal(t, WinLine{0, 1, 2}, line)
	})

	t.Run("No line on a drawn board", func(t *testing.T) {
		// Given: a full board without three in a row
		board := Board{
			PlayerX, PlayerO, PlayerX,
			PlayerO, PlayerX, PlayerO,
			PlayerO, PlayerX, PlayerO,
		}

		// When: looking for a winning line
		_, mark, ok := board.FindWinLine()

		// Then: nothing is found
		assert.False(t, ok)
		assert.Equal(t, EmptyCell, mark)
		assert.True(t, board.IsFull())
	})
}

func TestBoard_EmptyCells(t *testing.T) {
	// Given: a partially filled board
	board := Board{
		PlayerX, EmptyCell, PlayerO,
		EmptyCell, PlayerX, EmptyCell,
		EmptyCell, EmptyCell, PlayerO,
	}

	// Then: empty cells and counts reflect it
	assert.Equal(t, []int{1, 3, 5, 6, 7}, board.EmptyCells())
	assert.Equal(t, 2, board.Count(PlayerX))
	assert.Equal(t, 2, board.Count(PlayerO))
	assert.False(t, board.IsFull())
}

func TestNewSession(t *testing.T) {
	// Given: a fixed clock
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	// When: a session is created
	session := NewSession("abc", now)

	// Then: it holds a fresh game
	expected := &Session{
		ID: "abc",
		Game: GameState{
			Board:  Board{},
			Turn:   PlayerX,
			Status: StatusOngoing,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.Equal(t, expected, session)
}
