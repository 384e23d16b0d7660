package robotsession

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/stlalpha/robotd/internal/logging"
	"github.com/stlalpha/robotd/internal/navigate"
	"github.com/stlalpha/robotd/internal/protocol"
)

// DriverConfig holds the per-session timeouts the framing reader needs.
// These come from config.ServerConfig; they are specification-fixed for
// the protocol's own caps but configurable as deployment tunables.
type DriverConfig struct {
	NormalTimeout     time.Duration
	RechargingTimeout time.Duration
}

// Run drives one accepted connection through its entire lifecycle:
// handshake, navigation to the destination region, and the serpentine
// sweep. It registers the session at the start and unregisters it on every
// exit path, and it closes conn exactly once regardless of how the session
// ends. A read timeout or a closed connection ends the session silently;
// any other fault is classified into a terminal wire response and sent
// before the connection closes.
func Run(conn net.Conn, cfg DriverConfig, registry *Registry) {
	session := newRobotSession(conn)
	registry.Register(session)
	defer registry.Unregister(session.ID)
	defer session.Close()

	reader, err := protocol.NewReader(conn, cfg.NormalTimeout, cfg.RechargingTimeout)
	if err != nil {
		logging.Error("session %s: failed to arm read deadline: %v", session.ID, err)
		return
	}

	send := func(msg string) error {
		err := protocol.WriteMessage(conn, msg)
		if err == nil {
			session.touch()
		}
		return err
	}
	read := func(maxLen int) (string, error) {
		msg, err := reader.ReadMessage(maxLen)
		if err == nil {
			session.touch()
		}
		return msg, err
	}

	username, err := protocol.Handshake(reader, send)
	if err != nil {
		reportFault(send, err, session.ID)
		return
	}
	logging.Info("session %s: handshake ok, remote=%s, username=%s", session.ID, session.RemoteAddr, username)
	session.setPhase(Navigating)

	navigator := &navigate.Navigator{Read: read, Send: send}
	pos, orientation, err := navigator.FindDestination()
	if err != nil {
		reportFault(send, err, session.ID)
		return
	}
	session.setPosition(pos)
	session.setOrientation(orientation)
	session.setPhase(Sweeping)

	sweeper := &navigate.Sweeper{Read: read, Send: send}
	message, err := sweeper.Search(pos, orientation)
	if err != nil {
		reportFault(send, err, session.ID)
		return
	}

	session.setPhase(Terminated)
	if message != "" {
		logging.Info("session %s: recovered message %q", session.ID, message)
	} else {
		logging.Info("session %s: swept all 25 cells, nothing found", session.ID)
	}
}

// reportFault classifies err into its terminal wire response, if any, and
// sends it exactly once. Read timeouts and a connection the peer closed end
// the session without a wire message, matching the protocol's silent
// timeout behavior.
func reportFault(send func(string) error, err error, sessionID uuid.UUID) {
	var resp string
	switch err.(type) {
	case *protocol.SyntaxError:
		resp = protocol.RespSyntax
	case *protocol.LogicError:
		resp = protocol.RespLogic
	case *protocol.LoginError:
		resp = protocol.RespLoginFail
	default:
		if isTimeout(err) || errors.Is(err, io.EOF) {
			logging.Debug("session %s: connection ended: %v", sessionID, err)
			return
		}
		logging.Warn("session %s: unexpected error: %v", sessionID, err)
		return
	}

	logging.Info("session %s: %v", sessionID, err)
	if sendErr := send(resp); sendErr != nil {
		logging.Debug("session %s: failed to send fault response: %v", sessionID, sendErr)
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
