// Package action implements the packed representation of a single checkers
// move: a source square, a destination square and, for capture sequences,
// the ordered direction of every leap, all in one 32-bit word. It also
// parses the hyphen-separated movetext notation used to record games.
package action

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// constants used for the packed action word.

	// layout
	// 32       24       16       8
	// xxxxxxxx xxxxxxxx xxxxxxxx xxxxxxxx
	// uddddddd dddddddd dllllltt tttsssss
	// s - source square (31 max)
	// t - destination square (31 max)
	// l - jump length (8 max)
	// d - jump directions (2 bits per leap)
	// u - unused

	destinationShift = 5
	jumpLenShift     = 10
	jumpDirShift     = 15 // leap i lives at i*2 + jumpDirShift

	squareBitmask  = (1 << 5) - 1
	jumpLenBitmask = (1 << 4) - 1
	jumpDirBitmask = 0b11

	// MaxJumps is the largest number of capturing leaps one Action can
	// carry, so a position sequence has at most MaxJumps+1 entries.
	MaxJumps = 8

	maxSquare = 31
)

// An Action is one move on a checkerboard, packed into a single word.
// Squares are stored zero-based; the constructors take the 1-based numbers
// used by standard notation and convert, and the accessors never re-expose
// the 1-based form. An Action is plain immutable data and can be shared
// freely.
type Action uint32

// NewFromPositions creates an Action from an ordered sequence of standard
// 1-based position numbers, e.g. {19, 24} for a move or {10, 19, 12, 3}
// for a triple capture.
//
// A two-position sequence whose endpoints differ by 3, 4 or 5 is encoded as
// a plain move; everything else is a capture sequence whose consecutive
// positions must be a leap apart.
func NewFromPositions(positions []uint8) (Action, error) {
	squares := make([]uint8, len(positions))
	for i, p := range positions {
		squares[i] = p - 1
	}

	for _, sq := range squares {
		if sq > maxSquare {
			return 0, NewPositionValueError(strconv.Itoa(int(sq)))
		}
	}

	if len(squares) < 2 || len(squares) > MaxJumps+1 {
		return 0, NewMoveQuantityError(len(squares))
	}

	source := squares[0]
	destination := squares[len(squares)-1]

	data := uint32(source)
	data |= uint32(destination) << destinationShift

	absDiff := max(source, destination) - min(source, destination)

	if len(squares) > 2 || (absDiff != 3 && absDiff != 4 && absDiff != 5) {
		data |= uint32(len(squares)-1) << jumpLenShift

		for i := 0; i < len(squares)-1; i++ {
			diff := int8(squares[i+1]) - int8(squares[i])
			dir, ok := leapDirection(diff)
			if !ok {
				return 0, NewPositionValueError(strconv.Itoa(int(squares[i])))
			}
			data |= uint32(dir) << (uint(i)*2 + jumpDirShift)
		}
	}

	return Action(data), nil
}

// NewFromMovetext creates an Action from movetext written in Portable
// Draughts Notation: 1-based positions separated by hyphens, e.g. "19-24"
// or "10-19-12-3".
func NewFromMovetext(movetext string) (Action, error) {
	tokens := strings.Split(movetext, "-")
	positions := make([]uint8, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.ParseUint(tok, 10, 8)
		if err != nil {
			return 0, NewPositionValueError(tok)
		}
		positions[i] = uint8(v)
	}
	return NewFromPositions(positions)
}

// Source returns the starting square of the action.
func (a Action) Source() uint8 {
	return uint8(uint32(a) & squareBitmask)
}

// Destination returns the final square of the action.
func (a Action) Destination() uint8 {
	return uint8((uint32(a) >> destinationShift) & squareBitmask)
}

// JumpLen returns how many capturing leaps the action makes; zero for a
// plain move.
func (a Action) JumpLen() uint8 {
	return uint8((uint32(a) >> jumpLenShift) & jumpLenBitmask)
}

// JumpDirection returns the direction of leap i. The boolean is false when
// i is not a leap index of this action, which includes every index of a
// plain move.
func (a Action) JumpDirection(i uint8) (Direction, bool) {
	if i >= a.JumpLen() {
		return 0, false
	}
	code := (uint32(a) >> (uint(i)*2 + jumpDirShift)) & jumpDirBitmask
	return directionFromCode(code)
}

// Type returns whether the action is a plain move or a capture sequence.
func (a Action) Type() ActionType {
	if a.JumpLen() > 0 {
		return ActionTypeJump
	}
	return ActionTypeMove
}

// MoveDirection returns the direction a plain move travels in. The boolean
// is false for jumps, whose per-leap directions come from JumpDirection
// instead. Rows alternate their horizontal offset on the physical board, so
// the neighbor deltas flip with the row parity.
func (a Action) MoveDirection() (Direction, bool) {
	if a.Type() == ActionTypeJump {
		return 0, false
	}

	source := a.Source()
	diff := int8(a.Destination()) - int8(source)

	if (source/4)%2 == 0 { // even rows
		switch diff {
		case -4:
			return UpLeft, true
		case -3:
			return UpRight, true
		case 4:
			return DownLeft, true
		case 5:
			return DownRight, true
		}
		return 0, false
	}
	// odd rows
	switch diff {
	case -5:
		return UpLeft, true
	case -4:
		return UpRight, true
	case 3:
		return DownLeft, true
	case 4:
		return DownRight, true
	}
	return 0, false
}

// Movetext renders the action back into 1-based movetext. For a capture
// sequence the intermediate squares are reconstructed by walking the source
// through each leap direction, so the rendered text parses back to an
// identical Action.
func (a Action) Movetext() string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(int(a.Source()) + 1))

	n := a.JumpLen()
	if n == 0 {
		sb.WriteByte('-')
		sb.WriteString(strconv.Itoa(int(a.Destination()) + 1))
		return sb.String()
	}

	sq := int(a.Source())
	for i := uint8(0); i < n; i++ {
		dir, _ := a.JumpDirection(i)
		sq += dir.leapDelta()
		sb.WriteByte('-')
		sb.WriteString(strconv.Itoa(sq + 1))
	}
	return sb.String()
}

// String provides a string just for debugging purposes.
func (a Action) String() string {
	return fmt.Sprintf("<action %v type: %v leaps: %d>", a.Movetext(), a.Type(), a.JumpLen())
}

// MarshalText renders the action as movetext, so Actions embed directly in
// textual formats and log fields.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.Movetext()), nil
}

// UnmarshalText parses movetext in place.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := NewFromMovetext(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
