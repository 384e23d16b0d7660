package protocol

import "strconv"

// Hash computes the reference username hash: the sum of ASCII codepoints
// times 1000, reduced mod 2^16. Do not "simplify" the multiply-then-mod
// order; it is part of the wire contract.
func Hash(username string) int {
	sum := 0
	for _, c := range username {
		sum += int(c)
	}
	return (sum * 1000) % hashMod
}

// Handshake performs the username/hash exchange over r and w. On success it
// sends RespOK and returns the authenticated username. On a framing or
// parse violation it returns a *SyntaxError, on a recharge violation the
// reader's *LogicError, and on a code mismatch a *LoginError. Neither error is sent by Handshake itself — the caller (the
// session driver) owns translating faults to terminal wire messages.
func Handshake(r *Reader, send func(string) error) (string, error) {
	username, err := r.ReadMessage(MaxLenUsername)
	if err != nil {
		return "", err
	}

	h := Hash(username)
	serverCode := (h + ServerKey) % hashMod
	if err := send(strconv.Itoa(serverCode)); err != nil {
		return "", err
	}

	confirmationMsg, err := r.ReadMessage(MaxLenConfirmation)
	if err != nil {
		return "", err
	}
	confirmation, err := ParseNumber(confirmationMsg)
	if err != nil {
		return "", err
	}

	clientCode := (h + ClientKey) % hashMod
	if confirmation != clientCode {
		return "", &LoginError{Reason: "confirmation code mismatch"}
	}

	if err := send(RespOK); err != nil {
		return "", err
	}
	return username, nil
}
