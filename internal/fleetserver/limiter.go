package fleetserver

import (
	"net"
	"sync"
)

// limiter enforces the fleet-wide and per-IP connection caps, generalized
// from the reference BBS's node/IP connection tracker down to the two
// limits this protocol actually needs. The caps themselves are not stored
// here: tryAccept takes them on every call so a config reload takes effect
// on the very next accepted connection without the limiter needing to know
// anything about config.
type limiter struct {
	mu    sync.Mutex
	perIP map[string]int
	total int
}

func newLimiter() *limiter {
	return &limiter{perIP: make(map[string]int)}
}

// tryAccept atomically checks both limits against the caps passed in and,
// if they pass, registers the connection. It returns a rejection reason on
// failure. maxTotal or maxPerIP of 0 means unlimited.
func (l *limiter) tryAccept(addr net.Addr, maxTotal, maxPerIP int) (ok bool, reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if maxTotal > 0 && l.total >= maxTotal {
		return false, "fleet at capacity"
	}
	ip := extractIP(addr)
	if maxPerIP > 0 && l.perIP[ip] >= maxPerIP {
		return false, "too many connections from this address"
	}

	l.perIP[ip]++
	l.total++
	return true, ""
}

// release unregisters a connection previously accepted by tryAccept.
func (l *limiter) release(addr net.Addr) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ip := extractIP(addr)
	if count, ok := l.perIP[ip]; ok {
		if count <= 1 {
			delete(l.perIP, ip)
		} else {
			l.perIP[ip]--
		}
	}
	if l.total > 0 {
		l.total--
	}
}

func extractIP(addr net.Addr) string {
	if tcpAddr, ok := addr.(*net.TCPAddr); ok {
		return tcpAddr.IP.String()
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
