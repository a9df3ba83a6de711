package apperror

import "errors"

var (
	ErrGameFinished = errors.New("game is already finished")
	ErrCellOccupied = errors.New("cell is already occupied")
	ErrInvalidCell  = errors.New("invalid cell index")
	ErrCorruptState = errors.New("corrupt game state")
	ErrUnauthorized = errors.New("invalid session token")
	ErrEmptySecret  = errors.New("jwt secret key is empty")
)
