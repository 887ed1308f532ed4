package crypto

import (
	"crypto/ed25519"
	"errors"

	"github.com/btcsuite/btcd/btcutil/base58"

	"github.com/Griplock-Labs/MobileApp-sub001/internal/domain"
)

// ErrBadAddress reports an address that does not decode to a public key.
var ErrBadAddress = errors.New("crypto: malformed wallet address")

// AddressFromPublicKey encodes an Ed25519 public key as a base58 address.
func AddressFromPublicKey(pub ed25519.PublicKey) domain.WalletAddress {
	return domain.WalletAddress(base58.Encode(pub))
}

// PublicKeyFromAddress decodes a base58 address back into a public key.
func PublicKeyFromAddress(addr domain.WalletAddress) (ed25519.PublicKey, error) {
	raw := base58.Decode(string(addr))
	if len(raw) != ed25519.PublicKeySize {
		return nil, ErrBadAddress
	}
	return ed25519.PublicKey(raw), nil
}
