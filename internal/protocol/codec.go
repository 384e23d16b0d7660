package protocol

import (
	"strconv"
	"strings"
)

// Outbound command literals. Each is written to the wire with Terminator
// appended; none of them carry a numeric code prefix except where the
// protocol itself specifies one (the literals already include it).
const (
	CmdMove       = "102 MOVE"
	CmdTurnLeft   = "103 TURN LEFT"
	CmdTurnRight  = "104 TURN RIGHT"
	CmdGetMessage = "105 GET MESSAGE"
	CmdLogout     = "106 LOGOUT"
	RespOK        = "200 OK"
	RespLoginFail = "300 LOGIN FAILED"
	RespSyntax    = "301 SYNTAX ERROR"
	RespLogic     = "302 LOGIC ERROR"
)

// Client status tokens recognized out of band by the framing reader.
const (
	tokenRecharging = "RECHARGING"
	tokenFullPower  = "FULL POWER"
	tokenOK         = "OK"
)

// ParseNumber parses a client-supplied confirmation code. Embedded
// whitespace or non-digit characters are a SyntaxError, matching the
// reference implementation's strict "no whitespace, then int()" parse.
func ParseNumber(s string) (int, error) {
	if strings.ContainsAny(s, " \t") {
		return 0, &SyntaxError{Reason: "number contains whitespace: " + s}
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, &SyntaxError{Reason: "not a number: " + s}
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &SyntaxError{Reason: "not a number: " + s}
	}
	return n, nil
}

// Position is a reported robot location.
type Position struct {
	X, Y int
}

// ParsePosition parses an "OK <x> <y>" position report. Any deviation from
// exactly three space-separated fields, a literal "OK" in the first field,
// and two well-formed integers is a SyntaxError.
func ParsePosition(s string) (Position, error) {
	fields := strings.Split(s, " ")
	if len(fields) != 3 || fields[0] != tokenOK {
		return Position{}, &SyntaxError{Reason: "expected OK <x> <y>, got: " + s}
	}
	// Splitting on single spaces leaves any extra space as an empty field
	// and any other whitespace inside a field, so strconv.Atoi below
	// rejects both, along with signs-only tokens.
	x, err := strconv.Atoi(fields[1])
	if err != nil {
		return Position{}, &SyntaxError{Reason: "expected OK <x> <y>, got: " + s}
	}
	y, err := strconv.Atoi(fields[2])
	if err != nil {
		return Position{}, &SyntaxError{Reason: "expected OK <x> <y>, got: " + s}
	}
	return Position{X: x, Y: y}, nil
}
