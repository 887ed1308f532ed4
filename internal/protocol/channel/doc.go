// Package channel implements the end-to-end encryption layer wrapped around
// relayed payloads so the relay operator cannot read them.
//
// Both sides exchange ephemeral X25519 public keys through the relay, run
// Diffie–Hellman, and expand the raw shared secret with HKDF-SHA256 bound to
// a domain-separation context string. Payloads are sealed with AES-256-GCM
// under a fresh random nonce per message. Open fails closed: a tag mismatch
// returns ErrAuthFailure and never partial plaintext.
package channel
