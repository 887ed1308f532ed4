// Package store persists signer state on device: the sealed derivation
// secret (scrypt + ChaCha20-Poly1305 under a user passphrase) and the
// SQLite wallet database holding stealth index counters and pairing history.
package store
