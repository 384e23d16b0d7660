package robotsession

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stlalpha/robotd/internal/navigate"
	"github.com/stlalpha/robotd/internal/protocol"
)

const testCmdCap = 40 // generous enough for any outbound command literal

var testCfg = DriverConfig{NormalTimeout: 2 * time.Second, RechargingTimeout: 2 * time.Second}

// robotPeer plays the robot side of a session over a net.Pipe connection,
// tracking its own true position and heading the same way internal/navigate's
// simRobot does, but driven by real wire messages instead of direct
// function calls.
type robotPeer struct {
	conn     net.Conn
	reader   *protocol.Reader
	pos      protocol.Position
	heading  navigate.Orientation
	messages []string
	msgIdx   int
	lastCmd  string
}

func newRobotPeer(t *testing.T, conn net.Conn, pos protocol.Position, heading navigate.Orientation, messages []string) *robotPeer {
	t.Helper()
	r, err := protocol.NewReader(conn, 2*time.Second, 2*time.Second)
	if err != nil {
		t.Fatalf("protocol.NewReader: %v", err)
	}
	return &robotPeer{conn: conn, reader: r, pos: pos, heading: heading, messages: messages}
}

// login performs the client side of the handshake for the given username
// and returns once the server has confirmed with 200 OK.
func (p *robotPeer) login(t *testing.T, username string) {
	t.Helper()
	if err := protocol.WriteMessage(p.conn, username); err != nil {
		t.Fatalf("write username: %v", err)
	}
	serverCodeMsg, err := p.reader.ReadMessage(testCmdCap)
	if err != nil {
		t.Fatalf("read server code: %v", err)
	}
	h := protocol.Hash(username)
	wantServerCode := strconv.Itoa((h + protocol.ServerKey) % 65536)
	if serverCodeMsg != wantServerCode {
		t.Fatalf("server code = %q, want %q", serverCodeMsg, wantServerCode)
	}
	clientCode := (h + protocol.ClientKey) % 65536
	if err := protocol.WriteMessage(p.conn, strconv.Itoa(clientCode)); err != nil {
		t.Fatalf("write client code: %v", err)
	}
	ack, err := p.reader.ReadMessage(testCmdCap)
	if err != nil {
		t.Fatalf("read handshake ack: %v", err)
	}
	if ack != protocol.RespOK {
		t.Fatalf("handshake ack = %q, want %q", ack, protocol.RespOK)
	}
}

// serve answers driver commands until LOGOUT or the connection closes,
// returning the last command it saw.
func (p *robotPeer) serve(t *testing.T) string {
	t.Helper()
	for {
		cmd, err := p.reader.ReadMessage(testCmdCap)
		if err != nil {
			return p.lastCmd
		}
		p.lastCmd = cmd

		switch cmd {
		case protocol.CmdTurnLeft:
			p.heading = navigate.Apply(p.heading, protocol.CmdTurnLeft)
			p.reply(t)
		case protocol.CmdTurnRight:
			p.heading = navigate.Apply(p.heading, protocol.CmdTurnRight)
			p.reply(t)
		case protocol.CmdMove:
			switch p.heading {
			case navigate.North:
				p.pos.Y++
			case navigate.South:
				p.pos.Y--
			case navigate.East:
				p.pos.X++
			case navigate.West:
				p.pos.X--
			}
			p.reply(t)
		case protocol.CmdGetMessage:
			var m string
			if p.msgIdx < len(p.messages) {
				m = p.messages[p.msgIdx]
			}
			p.msgIdx++
			if err := protocol.WriteMessage(p.conn, m); err != nil {
				t.Fatalf("write message reply: %v", err)
			}
		case protocol.CmdLogout:
			return cmd
		default:
			t.Fatalf("unexpected command from driver: %q", cmd)
		}
	}
}

func (p *robotPeer) reply(t *testing.T) {
	t.Helper()
	msg := "OK " + strconv.Itoa(p.pos.X) + " " + strconv.Itoa(p.pos.Y)
	if err := protocol.WriteMessage(p.conn, msg); err != nil {
		t.Fatalf("write position reply: %v", err)
	}
}

func TestRun_FullSessionRecoversMessage(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	registry := NewRegistry()

	messages := make([]string, 25)
	messages[7] = "the secret is hidden in the attic"
	peer := newRobotPeer(t, clientConn, protocol.Position{X: 2, Y: -1}, navigate.South, messages)

	done := make(chan struct{})
	go func() {
		Run(serverConn, testCfg, registry)
		close(done)
	}()

	peer.login(t, "Mnau")
	lastCmd := peer.serve(t)

	<-done
	if lastCmd != protocol.CmdLogout {
		t.Errorf("last command = %q, want LOGOUT", lastCmd)
	}
	if registry.Len() != 0 {
		t.Errorf("registry still holds %d session(s) after Run returned", registry.Len())
	}
}

func TestRun_LoginErrorClosesWithoutCrashing(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	registry := NewRegistry()

	done := make(chan struct{})
	go func() {
		Run(serverConn, testCfg, registry)
		close(done)
	}()

	username := "Mnau"
	if err := protocol.WriteMessage(clientConn, username); err != nil {
		t.Fatalf("write username: %v", err)
	}
	reader, err := protocol.NewReader(clientConn, 2*time.Second, 2*time.Second)
	if err != nil {
		t.Fatalf("protocol.NewReader: %v", err)
	}
	serverCodeMsg, err := reader.ReadMessage(testCmdCap)
	if err != nil {
		t.Fatalf("read server code: %v", err)
	}
	h := protocol.Hash(username)
	wrongCode := (h+protocol.ClientKey+1) % 65536
	if strconv.Itoa((h+protocol.ServerKey)%65536) != serverCodeMsg {
		t.Fatalf("server code = %q, want %q", serverCodeMsg, strconv.Itoa((h+protocol.ServerKey)%65536))
	}
	// Echo back an intentionally wrong confirmation code.
	if err := protocol.WriteMessage(clientConn, strconv.Itoa(wrongCode)); err != nil {
		t.Fatalf("write wrong code: %v", err)
	}
	resp, err := reader.ReadMessage(testCmdCap)
	if err != nil {
		t.Fatalf("read fault response: %v", err)
	}
	if resp != protocol.RespLoginFail {
		t.Errorf("response = %q, want %q", resp, protocol.RespLoginFail)
	}

	<-done
	if registry.Len() != 0 {
		t.Errorf("registry still holds %d session(s) after Run returned", registry.Len())
	}
}
