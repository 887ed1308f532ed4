package types

import "crypto/ed25519"

// X25519Public is a Curve25519 public key.
type X25519Public [32]byte

// Slice returns the key as a []byte.
func (p X25519Public) Slice() []byte { return p[:] }

// X25519Private is a Curve25519 private key.
type X25519Private [32]byte

// Slice returns the key as a []byte.
func (k X25519Private) Slice() []byte { return k[:] }

// SymmetricKey is a derived AEAD key.
type SymmetricKey [32]byte

// Slice returns the key as a []byte.
func (k SymmetricKey) Slice() []byte { return k[:] }

// WalletKeypair is the funds-controlling Ed25519 pair plus its address.
// It lives in memory for the authentication session only.
type WalletKeypair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
	Address WalletAddress
}

// StealthKeypair is a one-time receiving pair derived from the wallet
// keypair and an address index.
type StealthKeypair struct {
	Index   uint32
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
	Address WalletAddress
}
