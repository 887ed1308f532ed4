package channel

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/Griplock-Labs/MobileApp-sub001/internal/crypto"
	"github.com/Griplock-Labs/MobileApp-sub001/internal/domain"
	"github.com/Griplock-Labs/MobileApp-sub001/internal/util/memzero"
)

const (
	nonceBytes = 12
	keyBytes   = 32

	hkdfSalt = "griplock-channel-v1"
)

var (
	// ErrAuthFailure reports a tag-verification failure. Fatal to the
	// current channel; callers must run a fresh key agreement.
	ErrAuthFailure = errors.New("channel: message authentication failed")

	// ErrShortCiphertext reports a ciphertext too small to carry a nonce.
	ErrShortCiphertext = errors.New("channel: ciphertext too short")
)

// GenerateEphemeral returns a fresh X25519 pair for one key agreement.
func GenerateEphemeral() (domain.X25519Private, domain.X25519Public, error) {
	return crypto.GenerateX25519()
}

// DeriveSharedKey runs X25519 against the peer's public key and expands the
// result with HKDF-SHA256. The contextInfo string separates keys derived for
// different purposes even when the raw DH output is identical.
func DeriveSharedKey(myPriv domain.X25519Private, peerPub domain.X25519Public, contextInfo string) (domain.SymmetricKey, error) {
	var key domain.SymmetricKey

	dh, err := crypto.DH(myPriv, peerPub)
	if err != nil {
		return key, err
	}

	r := hkdf.New(sha256.New, dh[:], []byte(hkdfSalt), []byte(contextInfo))
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return key, err
	}
	memzero.Zero32(&dh)
	return key, nil
}

// Seal encrypts plaintext under key with AES-256-GCM. A fresh random nonce
// is drawn per message and prepended to the returned ciphertext.
func Seal(key domain.SymmetricKey, plaintext []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, nonceBytes)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a Seal output. Any authentication failure returns
// ErrAuthFailure with no plaintext.
func Open(key domain.SymmetricKey, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < nonceBytes {
		return nil, ErrShortCiphertext
	}
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, ciphertext[:nonceBytes], ciphertext[nonceBytes:], nil)
	if err != nil {
		return nil, ErrAuthFailure
	}
	return pt, nil
}

// Cipher binds an established shared key so callers can seal and open
// without carrying the key around.
type Cipher struct {
	key domain.SymmetricKey
}

// NewCipher wraps an established shared key.
func NewCipher(key domain.SymmetricKey) *Cipher {
	return &Cipher{key: key}
}

// Seal encrypts plaintext under the bound key.
func (c *Cipher) Seal(plaintext []byte) ([]byte, error) {
	return Seal(c.key, plaintext)
}

// Open decrypts ciphertext under the bound key, failing closed.
func (c *Cipher) Open(ciphertext []byte) ([]byte, error) {
	return Open(c.key, ciphertext)
}

func newAEAD(key domain.SymmetricKey) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key[:keyBytes])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
