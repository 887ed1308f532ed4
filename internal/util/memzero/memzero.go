package memzero

import "crypto/subtle"

// Zero overwrites b with zeros in a constant-time friendly way.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	subtle.ConstantTimeCopy(1, b, make([]byte, len(b)))
}

// Zero32 wipes a fixed 32-byte secret in place.
func Zero32(b *[32]byte) {
	Zero(b[:])
}
