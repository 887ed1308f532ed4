package types

// Application payloads carried opaquely inside relay/relayed envelopes.
// The relay routes by room only and never inspects these.

const (
	PayloadWalletConnected = "wallet_connected"
	PayloadAttemptUpdate   = "attempt_update"
	PayloadSignRequest     = "sign_request"
	PayloadSignResult      = "sign_result"
	PayloadHandshake       = "secure_handshake"
	PayloadSecure          = "secure_envelope"
)

// Signing actions a dashboard may request.
const (
	ActionCompress   = "compress"
	ActionDecompress = "decompress"
)

// WalletConnected announces the wallet address to the paired dashboard.
type WalletConnected struct {
	Type    string        `json:"type"`
	Address WalletAddress `json:"address"`
}

// AttemptUpdate reports authentication-attempt telemetry to the peer.
type AttemptUpdate struct {
	Type           string `json:"type"`
	Attempts       int    `json:"attempts"`
	MaxAttempts    int    `json:"maxAttempts"`
	Remaining      int    `json:"remaining"`
	IsLockedOut    bool   `json:"isLockedOut"`
	LockoutEndTime int64  `json:"lockoutEndTime,omitempty"`
	Timestamp      int64  `json:"timestamp"`
}

// SignRequest asks the signer to perform an action over a transaction.
type SignRequest struct {
	Type        string `json:"type"`
	RequestID   string `json:"requestId"`
	Action      string `json:"action"`
	Transaction string `json:"transaction,omitempty"` // base64 payload bytes
}

// SignResult reports the outcome of a SignRequest. Signature and Error are
// mutually exclusive: signature only on success, error only on failure.
type SignResult struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId"`
	Action    string `json:"action"`
	Success   bool   `json:"success"`
	Signature string `json:"signature,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Handshake carries one side's ephemeral X25519 public key for the channel
// key agreement. The only payload allowed in plaintext.
type Handshake struct {
	Type      string `json:"type"`
	PublicKey string `json:"publicKey"` // base64 X25519 public key
}

// SecureEnvelope wraps an encrypted application payload once the channel
// key is established. Data is base64(nonce || ciphertext).
type SecureEnvelope struct {
	Type string `json:"type"`
	Data string `json:"data"`
}
