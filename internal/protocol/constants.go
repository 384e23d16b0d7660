package protocol

// Length caps, in bytes, including the two-byte terminator. These are the
// wire contract and are not configurable per session, only per deployment
// (see config.ServerConfig, which validates reloads never change them).
const (
	MaxLenUsername     = 20
	MaxLenConfirmation = 7
	MaxLenPosition     = 12
	maxLenFullPower    = 12 // RECHARGING / FULL POWER share this cap
	MaxLenMessage      = 100
)

// Handshake hash constants. The formula multiplies by 1000 before taking
// the mod; this is the contract, not an implementation detail to simplify.
const (
	ServerKey = 54621
	ClientKey = 45328
	hashMod   = 65536
)
