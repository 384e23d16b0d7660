package navigate

import "github.com/stlalpha/robotd/internal/protocol"

// ReadFunc reads the next message capped at maxLen, transparently
// absorbing recharge pauses. In production it is (*protocol.Reader).ReadMessage.
type ReadFunc func(maxLen int) (string, error)

// SendFunc writes an outbound command or response.
type SendFunc func(msg string) error

// Origin and DestinationEntry are the two waypoints routing passes
// through: first the grid origin, then the top-left corner of the
// destination region where the sweep begins.
var (
	Origin           = protocol.Position{X: 0, Y: 0}
	DestinationEntry = protocol.Position{X: -2, Y: 2}
)

// Navigator drives a robot from an unreported starting pose to the
// destination region entry point.
type Navigator struct {
	Read ReadFunc
	Send SendFunc
}

// FindDestination probes the robot's initial orientation, routes it
// through the origin, then to the destination region's entry corner, and
// returns the final position and heading for the sweeper to continue
// from.
func (n *Navigator) FindDestination() (protocol.Position, Orientation, error) {
	pos, orientation, err := n.probe()
	if err != nil {
		return protocol.Position{}, Unknown, err
	}

	pos, orientation, err = n.routeTo(pos, orientation, Origin)
	if err != nil {
		return protocol.Position{}, Unknown, err
	}

	pos, orientation, err = n.routeTo(pos, orientation, DestinationEntry)
	if err != nil {
		return protocol.Position{}, Unknown, err
	}

	return pos, orientation, nil
}

// probe issues the preparatory TURN LEFT to obtain a baseline position
// (the turn itself never moves the robot, but the position report it
// yields is the only way to learn current_coords before risking a MOVE),
// then moves until the position changes and infers heading from the
// delta. This ordering is wire-compatible with existing clients and must
// not be reordered or skipped even though the turn looks like a no-op.
func (n *Navigator) probe() (protocol.Position, Orientation, error) {
	start, err := n.turn(protocol.CmdTurnLeft)
	if err != nil {
		return protocol.Position{}, Unknown, err
	}

	current, err := n.moveUntilChanged(start)
	if err != nil {
		return protocol.Position{}, Unknown, err
	}

	return current, FromDelta(start, current), nil
}

// routeTo drives from (pos, orientation) to target one axis at a time:
// x first, then y, matching the reference tie-break.
func (n *Navigator) routeTo(pos protocol.Position, orientation Orientation, target protocol.Position) (protocol.Position, Orientation, error) {
	for pos != target {
		var desired Orientation
		switch {
		case pos.X != target.X:
			if pos.X < target.X {
				desired = East
			} else {
				desired = West
			}
		default:
			if pos.Y < target.Y {
				desired = North
			} else {
				desired = South
			}
		}

		for _, cmd := range TurnSequence(orientation, desired) {
			if _, err := n.turn(cmd); err != nil {
				return protocol.Position{}, Unknown, err
			}
			orientation = Apply(orientation, cmd)
		}

		next, err := n.moveUntilChanged(pos)
		if err != nil {
			return protocol.Position{}, Unknown, err
		}
		pos = next
	}
	return pos, orientation, nil
}

// moveUntilChanged issues MOVE, unconditionally retrying without turning
// whenever the robot is blocked (position unchanged). There is no
// obstacle-avoidance policy: a permanently blocked robot loops until the
// connection's read timeout fires. This preserves the reference
// implementation's behavior rather than inventing a search (see the open
// question this documents).
func (n *Navigator) moveUntilChanged(from protocol.Position) (protocol.Position, error) {
	for {
		if err := n.Send(protocol.CmdMove); err != nil {
			return protocol.Position{}, err
		}
		reply, err := n.Read(protocol.MaxLenPosition)
		if err != nil {
			return protocol.Position{}, err
		}
		pos, err := protocol.ParsePosition(reply)
		if err != nil {
			return protocol.Position{}, err
		}
		if pos != from {
			return pos, nil
		}
	}
}

// turn issues a single TURN command and reads the confirming position
// report. The report is not required to equal the pre-turn position —
// turns are assumed never to move the robot, but that is not enforced.
func (n *Navigator) turn(cmd string) (protocol.Position, error) {
	if err := n.Send(cmd); err != nil {
		return protocol.Position{}, err
	}
	reply, err := n.Read(protocol.MaxLenPosition)
	if err != nil {
		return protocol.Position{}, err
	}
	return protocol.ParsePosition(reply)
}
