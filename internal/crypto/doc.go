// Package crypto exposes the primitives used by the signer core.
//
// Contents
//
//   - X25519 key generation, clamping and Diffie–Hellman (GenerateX25519, DH)
//   - Ed25519 construction from deterministic seeds, signing and verification
//   - Base58 wallet-address encoding and decoding
//   - Short public-key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// Fixed-size array types from internal/domain are used throughout to avoid
// accidental reallocations. Callers should treat returned secrets as
// sensitive and wipe them with memzero when practical.
package crypto
