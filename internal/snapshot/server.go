// Package snapshot exposes a loopback-only JSON view of the session
// registry, polled by cmd/fleetmon when monitoring a remote robotd.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/stlalpha/robotd/internal/logging"
	"github.com/stlalpha/robotd/internal/robotsession"
)

// Server serves GET /fleet as a JSON array of robotsession.Snapshot. It is
// purely observational: it never issues protocol commands.
type Server struct {
	registry *robotsession.Registry

	mu       sync.Mutex
	listener net.Listener
}

// New constructs a Server backed by registry.
func New(registry *robotsession.Registry) *Server {
	return &Server{registry: registry}
}

// Start listens on addr (expected to be loopback-only, e.g.
// "127.0.0.1:9998") and serves until Close is called.
func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /fleet", s.handleFleet)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("snapshot listen: %w", err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	logging.Info("fleet snapshot endpoint listening on %s", addr)
	err = http.Serve(ln, mux)
	if errors.Is(err, http.ErrServerClosed) || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// Close stops the listener.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	err := s.listener.Close()
	s.listener = nil
	return err
}

func (s *Server) handleFleet(w http.ResponseWriter, r *http.Request) {
	snaps := s.registry.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snaps); err != nil {
		logging.Warn("failed to encode fleet snapshot response: %v", err)
	}
}
