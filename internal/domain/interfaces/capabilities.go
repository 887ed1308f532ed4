package interfaces

import (
	"context"

	domaintypes "github.com/Griplock-Labs/MobileApp-sub001/internal/domain/types"
)

// SecretStore is the on-device secure storage capability. The core only
// consumes it; how the secret is protected at rest is the store's problem.
type SecretStore interface {
	GetSecret(passphrase string) (string, bool, error)
	SetSecret(passphrase, secret string) error
}

// TokenReader delivers raw bytes from a physical token read.
type TokenReader interface {
	ReadToken(ctx context.Context) ([]byte, error)
}

// Broadcaster submits a signed transaction to the chain and returns its
// signature identifier.
type Broadcaster interface {
	Submit(ctx context.Context, signedTx []byte) (string, error)
}

// IndexStore persists the last-used stealth address index per wallet.
type IndexStore interface {
	NextIndex(wallet domaintypes.WalletAddress) (uint32, error)
	AdvanceIndex(wallet domaintypes.WalletAddress) error
}

// PairingHistory records pairing attempt outcomes for the owner to review.
type PairingHistory interface {
	RecordPairing(room domaintypes.RoomID, wallet domaintypes.WalletAddress, outcome string) error
}
