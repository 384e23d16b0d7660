// Package fleetserver implements the TCP accept loop that spawns one
// session driver goroutine per connecting robot, following the shape of
// the reference telnet server: listen, log, loop-accept, spawn, recover.
package fleetserver

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/stlalpha/robotd/internal/config"
	"github.com/stlalpha/robotd/internal/logging"
	"github.com/stlalpha/robotd/internal/robotsession"
)

// Config holds the listener address. Unlike the connection limits and
// session timeouts, the listen address cannot change without rebinding the
// socket, so it is fixed at construction rather than read from Live.
type Config struct {
	Host string
	Port int
}

// Server listens on TCP and spawns a robotsession.Run goroutine per
// accepted connection, applying fleet-wide and per-IP connection limits
// before handing a connection off. The connection limits and per-session
// timeouts are read from Live on every accept rather than captured once, so
// a config reload takes effect for the next connection without a restart.
type Server struct {
	cfg      Config
	live     *config.ServerConfig
	liveMu   *sync.RWMutex
	registry *robotsession.Registry
	limiter  *limiter

	mu       sync.Mutex
	listener net.Listener
}

// New constructs a Server. registry is shared with the scheduler and the
// snapshot endpoint so all three observe the same live session set. live
// and liveMu must be the same pair the config.Watcher writes into.
func New(cfg Config, live *config.ServerConfig, liveMu *sync.RWMutex, registry *robotsession.Registry) *Server {
	return &Server{
		cfg:      cfg,
		live:     live,
		liveMu:   liveMu,
		registry: registry,
		limiter:  newLimiter(),
	}
}

// ListenAndServe starts listening and blocks accepting connections until
// Close is called, at which point it returns nil.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	logging.Info("fleet server listening on %s", addr)

	for {
		conn, err := listener.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.listener == nil
			s.mu.Unlock()
			if closed {
				return nil
			}
			logging.Error("accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection applies connection limits and, if accepted, runs the
// session driver. A panic anywhere in a session's handling is recovered
// here so one malformed robot can never take down the listener.
func (s *Server) handleConnection(conn net.Conn) {
	remoteAddr := conn.RemoteAddr()

	s.liveMu.RLock()
	maxRobots := s.live.MaxRobots
	maxRobotsPerIP := s.live.MaxRobotsPerIP
	driverCfg := robotsession.DriverConfig{
		NormalTimeout:     time.Duration(s.live.NormalTimeoutSeconds) * time.Second,
		RechargingTimeout: time.Duration(s.live.RechargingTimeoutSeconds) * time.Second,
	}
	s.liveMu.RUnlock()

	ok, reason := s.limiter.tryAccept(remoteAddr, maxRobots, maxRobotsPerIP)
	if !ok {
		logging.Warn("rejecting connection from %s: %s", remoteAddr, reason)
		conn.Close()
		return
	}
	defer s.limiter.release(remoteAddr)

	defer func() {
		if r := recover(); r != nil {
			logging.Error("panic handling connection from %s: %v", remoteAddr, r)
		}
	}()

	logging.Info("accepted connection from %s", remoteAddr)
	robotsession.Run(conn, driverCfg, s.registry)
	logging.Info("connection from %s ended", remoteAddr)
}

// Close shuts down the listener. In-flight sessions are left to finish on
// their own.
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
