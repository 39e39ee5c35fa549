package main

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidMove      = errors.New("invalid move")
	ErrOutOfBounds      = fmt.Errorf("%w: out of bounds", ErrInvalidMove)
	ErrCellOccupied     = fmt.Errorf("%w: occupied", ErrInvalidMove)
	ErrNoMovesAvailable = errors.New("no moves available")
	ErrInvalidSettings  = errors.New("invalid settings")
	ErrGameNotRunning   = errors.New("game not running")
)
