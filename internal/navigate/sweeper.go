package navigate

import "github.com/stlalpha/robotd/internal/protocol"

const regionSize = 5

// Sweeper executes the fixed 5x5 serpentine search of the destination
// region, starting from its top-left corner.
type Sweeper struct {
	Read ReadFunc
	Send SendFunc
}

// Search assumes the robot is already at pos (DestinationEntry). It turns
// to face East, then scans each row, polling GET MESSAGE at every cell
// before any motion on that cell. It returns the first non-empty message
// found, or "" if all 25 cells were empty.
//
// Every inter-cell and row-transition move retries indefinitely until the
// reported position changes, exactly like the navigator's moveUntilChanged
// and the source's move_forward: a MOVE blocked by an obstacle is not a
// failure, just a no-op to be reissued. Without this, a single blocked
// cell would desynchronize the sweep's notion of which cell it is polling
// from the robot's actual position.
//
// The row transition below runs after every row, including the last —
// carried over unchanged from the source, which does the same extra
// south-move past the final row. The 25-cell coverage this produces is
// exercised by TestSearch_VisitsAllTwentyFiveCells.
func (s *Sweeper) Search(pos protocol.Position, orientation Orientation) (string, error) {
	for _, cmd := range TurnSequence(orientation, East) {
		if _, err := s.turn(cmd); err != nil {
			return "", err
		}
		orientation = Apply(orientation, cmd)
	}

	facingWest := false
	for row := 0; row < regionSize; row++ {
		for col := 0; col < regionSize; col++ {
			found, err := s.poll()
			if err != nil {
				return "", err
			}
			if found != "" {
				if err := s.Send(protocol.CmdLogout); err != nil {
					return "", err
				}
				return found, nil
			}
			if col < regionSize-1 {
				next, err := s.moveUntilChanged(pos)
				if err != nil {
					return "", err
				}
				pos = next
			}
		}

		turnCmd := protocol.CmdTurnRight
		if facingWest {
			turnCmd = protocol.CmdTurnLeft
		}
		if _, err := s.turn(turnCmd); err != nil {
			return "", err
		}
		next, err := s.moveUntilChanged(pos)
		if err != nil {
			return "", err
		}
		pos = next
		if _, err := s.turn(turnCmd); err != nil {
			return "", err
		}
		facingWest = !facingWest
	}

	return "", nil
}

func (s *Sweeper) poll() (string, error) {
	if err := s.Send(protocol.CmdGetMessage); err != nil {
		return "", err
	}
	return s.Read(protocol.MaxLenMessage)
}

// moveUntilChanged issues MOVE, unconditionally retrying without turning
// whenever the robot is blocked (position unchanged), mirroring
// navigator.go's moveUntilChanged.
func (s *Sweeper) moveUntilChanged(from protocol.Position) (protocol.Position, error) {
	for {
		if err := s.Send(protocol.CmdMove); err != nil {
			return protocol.Position{}, err
		}
		reply, err := s.Read(protocol.MaxLenPosition)
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

func (s *Sweeper) turn(cmd string) (protocol.Position, error) {
	if err := s.Send(cmd); err != nil {
		return protocol.Position{}, err
	}
	reply, err := s.Read(protocol.MaxLenPosition)
	if err != nil {
		return protocol.Position{}, err
	}
	return protocol.ParsePosition(reply)
}
