// Package navigate implements the orientation-inference, routing, and
// serpentine-sweep planner that drives a robot from an unknown starting
// pose to the destination region and searches it for a hidden message.
package navigate

import "github.com/stlalpha/robotd/internal/protocol"

// Orientation is one of the four cardinal headings a robot can face.
// Unknown is the zero value, used before the first successful probe.
type Orientation int

const (
	Unknown Orientation = iota
	North
	East
	South
	West
)

func (o Orientation) String() string {
	switch o {
	case North:
		return "North"
	case East:
		return "East"
	case South:
		return "South"
	case West:
		return "West"
	default:
		return "Unknown"
	}
}

// cycle is the clockwise ordering of headings: turning right advances one
// step, turning left retreats one step.
var cycle = [4]Orientation{North, East, South, West}

func indexOf(o Orientation) int {
	for i, c := range cycle {
		if c == o {
			return i
		}
	}
	return -1
}

// TurnSequence returns the commands needed to rotate from current to
// target: none if already facing it, a single turn for a 90 degree
// correction, or two left turns for a full reversal (matching the
// reference's choice of "two lefts" over "two rights" for opposites).
func TurnSequence(current, target Orientation) []string {
	if current == target {
		return nil
	}
	diff := (indexOf(target) - indexOf(current) + 4) % 4
	switch diff {
	case 1:
		return []string{protocol.CmdTurnRight}
	case 2:
		return []string{protocol.CmdTurnLeft, protocol.CmdTurnLeft}
	case 3:
		return []string{protocol.CmdTurnLeft}
	}
	return nil
}

// Apply returns the heading that results from issuing a single turn
// command while facing o.
func Apply(o Orientation, cmd string) Orientation {
	ci := indexOf(o)
	if ci == -1 {
		return o
	}
	switch cmd {
	case protocol.CmdTurnRight:
		return cycle[(ci+1)%4]
	case protocol.CmdTurnLeft:
		return cycle[(ci+3)%4]
	default:
		return o
	}
}

// FromDelta infers the heading implied by moving from `from` to `to`,
// which must differ in exactly one axis (the contract of a single MOVE).
func FromDelta(from, to protocol.Position) Orientation {
	dx, dy := to.X-from.X, to.Y-from.Y
	switch {
	case dx > 0:
		return East
	case dx < 0:
		return West
	case dy > 0:
		return North
	case dy < 0:
		return South
	default:
		return Unknown
	}
}
