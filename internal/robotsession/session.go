// Package robotsession sequences the protocol and navigation layers into a
// full connection lifecycle and tracks live connections for the ambient
// fleet-monitoring layer.
package robotsession

import (
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stlalpha/robotd/internal/navigate"
	"github.com/stlalpha/robotd/internal/protocol"
)

// Phase is the coarse lifecycle stage of a session, observed by the
// registry's monitor and reaper.
type Phase int

const (
	Handshaking Phase = iota
	Navigating
	Sweeping
	Terminated
)

func (p Phase) String() string {
	switch p {
	case Handshaking:
		return "handshaking"
	case Navigating:
		return "navigating"
	case Sweeping:
		return "sweeping"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// RobotSession is the per-connection state tracked for observability. Its
// ID is assigned at accept time and is never sent on the wire; it exists
// solely for the registry, the reaper, and the monitor.
type RobotSession struct {
	ID         uuid.UUID
	RemoteAddr string
	StartedAt  time.Time

	conn      net.Conn
	closeOnce sync.Once

	mu           sync.RWMutex
	position     protocol.Position
	orientation  navigate.Orientation
	phase        Phase
	lastActivity time.Time
}

func newRobotSession(conn net.Conn) *RobotSession {
	now := time.Now()
	return &RobotSession{
		ID:           uuid.New(),
		RemoteAddr:   conn.RemoteAddr().String(),
		StartedAt:    now,
		conn:         conn,
		phase:        Handshaking,
		lastActivity: now,
	}
}

func (s *RobotSession) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

func (s *RobotSession) setPosition(pos protocol.Position) {
	s.mu.Lock()
	s.position = pos
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

func (s *RobotSession) setOrientation(o navigate.Orientation) {
	s.mu.Lock()
	s.orientation = o
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

func (s *RobotSession) touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// LastActivity reports the last time this session sent or received a
// message, used by the reaper to find stale sessions.
func (s *RobotSession) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

// Close closes the underlying connection. Safe to call more than once or
// concurrently with the session's own driver goroutine; only the first
// call has any effect.
func (s *RobotSession) Close() {
	s.closeOnce.Do(func() {
		s.conn.Close()
	})
}

// Snapshot is a point-in-time, registry-safe copy of a session's observable
// state, used by the monitor and the reaper. It never aliases the live
// session's fields.
type Snapshot struct {
	ID           uuid.UUID
	RemoteAddr   string
	Phase        string
	Position     protocol.Position
	Orientation  string
	ConnectedFor time.Duration
}

func (s *RobotSession) snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		ID:           s.ID,
		RemoteAddr:   s.RemoteAddr,
		Phase:        s.phase.String(),
		Position:     s.position,
		Orientation:  s.orientation.String(),
		ConnectedFor: time.Since(s.StartedAt),
	}
}
