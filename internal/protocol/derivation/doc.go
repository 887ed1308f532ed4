// Package derivation turns a physical-token read plus memorized factors into
// the deterministic wallet key pair, and derives per-index stealth receiving
// pairs from it.
//
// Determinism is the contract: identical inputs always produce identical
// keys, across restarts and across devices. The wallet seed is hardened with
// Argon2id because the PIN is low-entropy; stealth seeds come from
// HKDF-SHA256 with the index bound into the info string.
package derivation
