package domain

import (
	interfaces "github.com/Griplock-Labs/MobileApp-sub001/internal/domain/interfaces"
	types "github.com/Griplock-Labs/MobileApp-sub001/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	RoomID            = types.RoomID
	PairingSecret     = types.PairingSecret
	WalletAddress     = types.WalletAddress
	SessionStatus     = types.SessionStatus
	DisconnectReason  = types.DisconnectReason
	AuthLevel         = types.AuthLevel
	SessionDescriptor = types.SessionDescriptor
	WalletKeypair     = types.WalletKeypair
	StealthKeypair    = types.StealthKeypair
	X25519Public      = types.X25519Public
	X25519Private     = types.X25519Private
	SymmetricKey      = types.SymmetricKey
	WalletConnected   = types.WalletConnected
	AttemptUpdate     = types.AttemptUpdate
	SignRequest       = types.SignRequest
	SignResult        = types.SignResult
	Handshake         = types.Handshake
	SecureEnvelope    = types.SecureEnvelope
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	SecretStore    = interfaces.SecretStore
	TokenReader    = interfaces.TokenReader
	Broadcaster    = interfaces.Broadcaster
	IndexStore     = interfaces.IndexStore
	PairingHistory = interfaces.PairingHistory
)

// Re-exported constants so callers rarely need the types subpackage.
const (
	StatusDisconnected = types.StatusDisconnected
	StatusConnecting   = types.StatusConnecting
	StatusConnected    = types.StatusConnected
	StatusFailed       = types.StatusFailed

	ReasonPeerClosed       = types.ReasonPeerClosed
	ReasonConnectionFailed = types.ReasonConnectionFailed
	ReasonRoomExpired      = types.ReasonRoomExpired

	AuthToken          = types.AuthToken
	AuthTokenPIN       = types.AuthTokenPIN
	AuthTokenSecret    = types.AuthTokenSecret
	AuthTokenPINSecret = types.AuthTokenPINSecret

	PayloadWalletConnected = types.PayloadWalletConnected
	PayloadAttemptUpdate   = types.PayloadAttemptUpdate
	PayloadSignRequest     = types.PayloadSignRequest
	PayloadSignResult      = types.PayloadSignResult
	PayloadHandshake       = types.PayloadHandshake
	PayloadSecure          = types.PayloadSecure

	ActionCompress   = types.ActionCompress
	ActionDecompress = types.ActionDecompress
)

// ParseAuthLevel is re-exported for config loading.
var ParseAuthLevel = types.ParseAuthLevel
