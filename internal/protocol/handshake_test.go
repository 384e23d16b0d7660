package protocol

import (
	"strconv"
	"testing"
	"time"
)

func TestHandshake_RoundTripLaw(t *testing.T) {
	username := "Mnau"
	h := Hash(username)
	clientCode := (h + ClientKey) % hashMod

	conn := &fakeConn{chunks: [][]byte{
		msg(username),
		msg(strconv.Itoa(clientCode)),
	}}
	r, _ := NewReader(conn, time.Second, 5*time.Second)

	var sent []string
	send := func(s string) error {
		sent = append(sent, s)
		return nil
	}

	got, err := Handshake(r, send)
	if err != nil {
		t.Fatalf("Handshake: %v", err)
	}
	if got != username {
		t.Errorf("got username %q, want %q", got, username)
	}
	if len(sent) != 2 {
		t.Fatalf("expected 2 sent messages, got %d: %v", len(sent), sent)
	}
	wantServerCode := strconv.Itoa((h + ServerKey) % hashMod)
	if sent[0] != wantServerCode {
		t.Errorf("server code = %q, want %q", sent[0], wantServerCode)
	}
	if sent[1] != RespOK {
		t.Errorf("final message = %q, want %q", sent[1], RespOK)
	}
}

func TestHandshake_MismatchedCodeIsLoginError(t *testing.T) {
	username := "Mnau"
	h := Hash(username)
	serverCode := (h + ServerKey) % hashMod // client echoes the server code by mistake

	conn := &fakeConn{chunks: [][]byte{
		msg(username),
		msg(strconv.Itoa(serverCode)),
	}}
	r, _ := NewReader(conn, time.Second, 5*time.Second)

	_, err := Handshake(r, func(string) error { return nil })
	if _, ok := err.(*LoginError); !ok {
		t.Fatalf("expected *LoginError, got %T (%v)", err, err)
	}
}

func TestHandshake_OverLongUsernameIsSyntaxError(t *testing.T) {
	conn := &fakeConn{chunks: [][]byte{msg("this-username-is-absolutely-too-long")}}
	r, _ := NewReader(conn, time.Second, 5*time.Second)

	_, err := Handshake(r, func(string) error { return nil })
	if _, ok := err.(*SyntaxError); !ok {
		t.Fatalf("expected *SyntaxError, got %T (%v)", err, err)
	}
}

func TestHandshake_NonNumericConfirmationIsSyntaxError(t *testing.T) {
	conn := &fakeConn{chunks: [][]byte{msg("Mnau"), msg("not-a-number")}}
	r, _ := NewReader(conn, time.Second, 5*time.Second)

	_, err := Handshake(r, func(string) error { return nil })
	if _, ok := err.(*SyntaxError); !ok {
		t.Fatalf("expected *SyntaxError, got %T (%v)", err, err)
	}
}
