package robotsession

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Registry tracks every live robot session behind a single RWMutex. The
// registry never blocks a session's own protocol goroutine: registration,
// lookup, and removal are all non-blocking map operations, matching the
// reference session registry's shape.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*RobotSession
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uuid.UUID]*RobotSession)}
}

// Register adds a session to the registry.
func (r *Registry) Register(s *RobotSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// Unregister removes a session from the registry. Unregistering an ID not
// present is a no-op.
func (r *Registry) Unregister(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Get returns the session for id, if it is still registered.
func (r *Registry) Get(id uuid.UUID) (*RobotSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// ListActive returns every registered session, ordered by connect time, for
// stable monitor and reaper iteration.
func (r *Registry) ListActive() []*RobotSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*RobotSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.Before(result[j].StartedAt)
	})
	return result
}

// Snapshot copies out the observable state of every live session, sorted by
// connect time. It never exposes a live *RobotSession itself, so callers
// outside this package can never race its internal mutex.
func (r *Registry) Snapshot() []Snapshot {
	active := r.ListActive()
	out := make([]Snapshot, 0, len(active))
	for _, s := range active {
		out = append(out, s.snapshot())
	}
	return out
}

// Len reports the number of currently registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
