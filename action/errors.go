package action

import "fmt"

// A PositionValueError reports an input value that cannot be part of a
// legal action: a token that does not parse as a position number, a square
// index past the edge of the board, or a leap that lands on a non-adjacent
// square. Position holds the offending token or square index verbatim.
type PositionValueError struct {
	Position string
}

func NewPositionValueError(position string) error {
	return &PositionValueError{Position: position}
}

func (e *PositionValueError) Error() string {
	return fmt.Sprintf("position %q cannot be part of an action", e.Position)
}

// A MoveQuantityError reports a position sequence too short or too long to
// encode. An action needs at least a source and a destination, and can
// carry at most MaxJumps leaps.
type MoveQuantityError struct {
	Quantity int
}

func NewMoveQuantityError(quantity int) error {
	return &MoveQuantityError{Quantity: quantity}
}

func (e *MoveQuantityError) Error() string {
	return fmt.Sprintf("an action takes 2 to %d positions, got %d", MaxJumps+1, e.Quantity)
}
