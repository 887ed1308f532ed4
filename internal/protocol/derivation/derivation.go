package derivation

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"

	"github.com/Griplock-Labs/MobileApp-sub001/internal/crypto"
	"github.com/Griplock-Labs/MobileApp-sub001/internal/domain"
	"github.com/Griplock-Labs/MobileApp-sub001/internal/util/memzero"
)

const (
	seedBytes = 32

	// Argon2id parameters. Changing any of these changes every derived
	// wallet, so they are fixed for the lifetime of the scheme.
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4

	walletContext  = "griplock-wallet-v1"
	stealthContext = "griplock-stealth-v1"
)

var (
	ErrEmptyToken    = errors.New("derivation: token bytes are required")
	ErrMissingPIN    = errors.New("derivation: auth level requires a PIN")
	ErrMissingSecret = errors.New("derivation: auth level requires a secret")
)

// WalletKeypair derives the primary signing pair from the token read and
// the memorized factors required by level. Missing a required factor is an
// error, never a silent downgrade to a weaker key.
func WalletKeypair(tokenBytes []byte, pin, secret string, level domain.AuthLevel) (domain.WalletKeypair, error) {
	if len(tokenBytes) == 0 {
		return domain.WalletKeypair{}, ErrEmptyToken
	}
	if level.RequiresPIN() && pin == "" {
		return domain.WalletKeypair{}, ErrMissingPIN
	}
	if level.RequiresSecret() && secret == "" {
		return domain.WalletKeypair{}, ErrMissingSecret
	}

	// Every supplied factor is mixed in. The NUL separator keeps
	// ("ab", "c") and ("a", "bc") from colliding.
	password := make([]byte, 0, len(pin)+1+len(secret))
	password = append(password, pin...)
	password = append(password, 0)
	password = append(password, secret...)

	salt := saltFromToken(tokenBytes)
	seed := argon2.IDKey(password, salt[:], argonTime, argonMemory, argonThreads, seedBytes)
	memzero.Zero(password)

	pub, priv := crypto.Ed25519FromSeed(seed)
	memzero.Zero(seed)

	return domain.WalletKeypair{
		Public:  pub,
		Private: priv,
		Address: crypto.AddressFromPublicKey(pub),
	}, nil
}

// StealthAddress derives the receiving pair for index from the wallet pair.
// Distinct indices under the same wallet yield distinct addresses; the
// wallet secret never needs to be re-entered.
func StealthAddress(wallet domain.WalletKeypair, index uint32) (domain.StealthKeypair, error) {
	if len(wallet.Private) == 0 {
		return domain.StealthKeypair{}, errors.New("derivation: wallet keypair is not initialised")
	}

	info := make([]byte, 0, len(stealthContext)+4)
	info = append(info, stealthContext...)
	info = binary.BigEndian.AppendUint32(info, index)

	r := hkdf.New(sha256.New, wallet.Private.Seed(), []byte(walletContext), info)
	seed := make([]byte, seedBytes)
	if _, err := io.ReadFull(r, seed); err != nil {
		return domain.StealthKeypair{}, err
	}

	pub, priv := crypto.Ed25519FromSeed(seed)
	memzero.Zero(seed)

	return domain.StealthKeypair{
		Index:   index,
		Public:  pub,
		Private: priv,
		Address: crypto.AddressFromPublicKey(pub),
	}, nil
}

func saltFromToken(tokenBytes []byte) [32]byte {
	h := sha256.New()
	h.Write([]byte(walletContext))
	h.Write([]byte{':'})
	h.Write(tokenBytes)
	var out [32]byte
	h.Sum(out[:0])
	return out
}
