package game

import (
	"errors"
	"fmt"
)

// Sentinel errors for the match state machine. Handlers map these onto HTTP
// status codes; none of them are fatal to the process.
var (
	// ErrValidation covers malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")

	// ErrMatchOver is returned when a move is attempted on a terminated match.
	ErrMatchOver = errors.New("match is over")

	// ErrNoPlayer is returned when a move is attempted for an unoccupied side.
	ErrNoPlayer = errors.New("no player assigned to side")

	// ErrOccupiedSlot is returned when joining a side that already has an occupant.
	ErrOccupiedSlot = errors.New("player slot is already occupied")

	// ErrDuplicateOccupant is returned when a user tries to occupy both sides.
	ErrDuplicateOccupant = errors.New("user already occupies the other side")
)

// IllegalMoveError is returned when the rules engine rejects a move. The
// engine's rejection is preserved as the cause.
type IllegalMoveError struct {
	SAN  string
	Side Side
	Err  error
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %q for side %q: %v", e.SAN, e.Side, e.Err)
}

func (e *IllegalMoveError) Unwrap() error { return e.Err }
