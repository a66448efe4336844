package game

// Action is one discrete bot command per tick. The numeric values match the
// runner's wire encoding.
type Action int

const (
	None Action = iota
	Up
	Down
	Left
	Right
	UseItem
)

// Delta returns the grid offset an action moves by. Non-movement actions
// return (0, 0).
func (a Action) Delta() (dx, dy int) {
	switch a {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// IsMove reports whether the action moves the animal.
func (a Action) IsMove() bool {
	return a >= Up && a <= Right
}

func (a Action) String() string {
	switch a {
	case None:
		return "None"
	case Up:
		return "Up"
	case Down:
		return "Down"
	case Left:
		return "Left"
	case Right:
		return "Right"
	case UseItem:
		return "UseItem"
	}
	return "Unknown"
}

// MoveActions lists the four directional actions in wire order.
var MoveActions = []Action{Up, Down, Left, Right}

type StateHash uint64
