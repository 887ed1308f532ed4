package relay

import (
	"encoding/json"
	"errors"
)

// Relay wire protocol frame types. Every application-level message travels
// inside the payload of a relay/relayed envelope; the relay server routes by
// room and never inspects payloads.
const (
	TypeJoinRoom         = "join_room"
	TypeRoomJoined       = "room_joined"
	TypeError            = "error"
	TypeRelay            = "relay"
	TypeRelayed          = "relayed"
	TypePeerDisconnected = "peer_disconnected"
	TypeRoomExpired      = "room_expired"
	TypeDisconnect       = "disconnect"
)

// Envelope is the tagged union for a single JSON text frame. Which fields
// are meaningful depends on Type; unrecognized types are ignored by the
// session for forward compatibility.
type Envelope struct {
	Type    string          `json:"type"`
	RoomID  string          `json:"roomId,omitempty"`
	Secret  string          `json:"secret,omitempty"`
	Message string          `json:"message,omitempty"`
	Reason  string          `json:"reason,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

var errNoType = errors.New("relay: frame has no type discriminator")

// decodeEnvelope validates a frame on ingress.
func decodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, err
	}
	if env.Type == "" {
		return Envelope{}, errNoType
	}
	return env, nil
}

// ProtocolError carries an error the relay reported, verbatim.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string {
	return "relay: server error: " + e.Message
}

var (
	// ErrJoinTimeout reports that no room_joined arrived within the join
	// window.
	ErrJoinTimeout = errors.New("relay: timed out waiting for room_joined")

	// ErrTransport wraps websocket-level failures.
	ErrTransport = errors.New("relay: transport failure")
)
