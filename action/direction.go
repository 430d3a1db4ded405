package action

// A Direction is one of the four diagonals a piece can travel along. The
// numeric values are the 2-bit codes stored in the packed word, in
// declaration order; that correspondence is part of the format.
type Direction uint8

const (
	UpLeft Direction = iota
	UpRight
	DownLeft
	DownRight
)

// ActionType is the kind of move an Action encodes.
type ActionType uint8

const (
	ActionTypeMove ActionType = iota
	ActionTypeJump
)

// directionFromCode maps a masked 2-bit field back to a Direction. Decoding
// always goes through this explicit mapping rather than a bare conversion,
// so an out-of-range code can never surface as a Direction.
func directionFromCode(code uint32) (Direction, bool) {
	switch code {
	case 0:
		return UpLeft, true
	case 1:
		return UpRight, true
	case 2:
		return DownLeft, true
	case 3:
		return DownRight, true
	}
	return 0, false
}

// leapDirection classifies the square delta of a single capturing leap.
// Anything other than the four leap distances means the two squares are not
// a leap apart.
func leapDirection(diff int8) (Direction, bool) {
	switch diff {
	case -9:
		return UpLeft, true
	case -7:
		return UpRight, true
	case 7:
		return DownLeft, true
	case 9:
		return DownRight, true
	}
	return 0, false
}

// leapDelta is the square-index delta of one leap in this direction.
func (d Direction) leapDelta() int {
	switch d {
	case UpLeft:
		return -9
	case UpRight:
		return -7
	case DownLeft:
		return 7
	case DownRight:
		return 9
	}
	return 0
}

func (d Direction) String() string {
	switch d {
	case UpLeft:
		return "up-left"
	case UpRight:
		return "up-right"
	case DownLeft:
		return "down-left"
	case DownRight:
		return "down-right"
	}
	return "unknown"
}

func (t ActionType) String() string {
	switch t {
	case ActionTypeMove:
		return "move"
	case ActionTypeJump:
		return "jump"
	}
	return "unknown"
}
