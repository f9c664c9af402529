package game

import (
	"errors"
	"fmt"
)

// Game errors
var (
	ErrUnknownLocation = errors.New("unknown location")
	ErrIllegalAction   = errors.New("illegal game action")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidBoard    = errors.New("invalid board")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrMatchOver       = errors.New("match is over")
	ErrUnknownPlayer   = errors.New("unknown player")
)

// ErrIllegalPlacement is returned when a unit cannot be put on a tile.
// It matches ErrIllegalAction with errors.Is.
var ErrIllegalPlacement = fmt.Errorf("%w: tile cannot host a unit", ErrIllegalAction)

func unknownLocation(x, y int) error {
	return fmt.Errorf("%w: (%d,%d)", ErrUnknownLocation, x, y)
}
