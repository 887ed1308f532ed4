package types

// RoomID identifies a pairing room on the relay.
type RoomID string

// String returns the string form of the room identifier.
func (id RoomID) String() string { return string(id) }

// PairingSecret is the shared secret proving both parties scanned the same
// code. It must never contain a colon; the code format reserves it.
type PairingSecret string

// String returns the string form of the pairing secret.
func (s PairingSecret) String() string { return string(s) }

// WalletAddress is a base58-encoded Ed25519 public key.
type WalletAddress string

// String returns the string form of the wallet address.
func (a WalletAddress) String() string { return string(a) }

// SessionStatus is the relay session state machine status.
type SessionStatus int

const (
	StatusDisconnected SessionStatus = iota
	StatusConnecting
	StatusConnected
	StatusFailed
)

// String returns a human-readable status name.
func (s SessionStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DisconnectReason distinguishes why a connected session ended.
type DisconnectReason string

const (
	ReasonPeerClosed       DisconnectReason = "peer_closed"
	ReasonConnectionFailed DisconnectReason = "connection_failed"
	ReasonRoomExpired      DisconnectReason = "room_expired"
)

// AuthLevel selects which factors key derivation must mix in.
type AuthLevel int

const (
	AuthToken AuthLevel = iota
	AuthTokenPIN
	AuthTokenSecret
	AuthTokenPINSecret
)

// RequiresPIN reports whether the level needs a PIN.
func (l AuthLevel) RequiresPIN() bool {
	return l == AuthTokenPIN || l == AuthTokenPINSecret
}

// RequiresSecret reports whether the level needs a stored secret.
func (l AuthLevel) RequiresSecret() bool {
	return l == AuthTokenSecret || l == AuthTokenPINSecret
}

// ParseAuthLevel maps a config string to an AuthLevel. Unknown strings fall
// back to the strictest level.
func ParseAuthLevel(s string) AuthLevel {
	switch s {
	case "token":
		return AuthToken
	case "token+pin":
		return AuthTokenPIN
	case "token+secret":
		return AuthTokenSecret
	default:
		return AuthTokenPINSecret
	}
}
