package types

// SessionDescriptor is the parsed form of a pairing code. Immutable; its
// lifetime is a single pairing attempt.
type SessionDescriptor struct {
	RoomID        RoomID
	PairingSecret PairingSecret
	RelayEndpoint string // ws:// or wss:// URL of the relay
}
