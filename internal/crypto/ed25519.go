package crypto

import (
	"crypto/ed25519"
)

// Ed25519FromSeed builds a signing key pair from a 32-byte seed. The same
// seed always yields the same pair.
func Ed25519FromSeed(seed []byte) (ed25519.PublicKey, ed25519.PrivateKey) {
	priv := ed25519.NewKeyFromSeed(seed)
	return priv.Public().(ed25519.PublicKey), priv
}

// SignEd25519 signs msg with priv and returns the signature.
func SignEd25519(priv ed25519.PrivateKey, msg []byte) []byte {
	return ed25519.Sign(priv, msg)
}

// VerifyEd25519 verifies sig over msg with pub.
func VerifyEd25519(pub ed25519.PublicKey, msg, sig []byte) bool {
	return ed25519.Verify(pub, msg, sig)
}
