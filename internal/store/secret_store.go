package store

import (
	"path/filepath"
	"sync"

	"github.com/Griplock-Labs/MobileApp-sub001/internal/domain"
)

const secretFile = "secret.enc"

// SecretFileStore keeps the derivation secret sealed on disk under a
// passphrase-derived key. It implements the get/set secret capability the
// derivation layer consumes.
type SecretFileStore struct {
	dir string
	mu  sync.Mutex
}

func NewSecretFileStore(dir string) *SecretFileStore { return &SecretFileStore{dir: dir} }

// SetSecret seals secret under the passphrase and writes it atomically.
func (s *SecretFileStore) SetSecret(passphrase, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	N, r, p := scryptParamsDefault()
	b, err := seal(passphrase, []byte(secret), N, r, p)
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(s.dir, secretFile), b, 0o600)
}

// GetSecret returns the stored secret, or ok=false when none was ever set.
func (s *SecretFileStore) GetSecret(passphrase string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(filepath.Join(s.dir, secretFile))
	if err != nil {
		return "", false, err
	}
	if b == nil {
		return "", false, nil
	}
	raw, err := open(passphrase, b)
	if err != nil {
		return "", false, err
	}
	return string(raw), true, nil
}

// Compile-time assertion that the store satisfies the capability contract.
var _ domain.SecretStore = (*SecretFileStore)(nil)
