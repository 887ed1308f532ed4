package crypto

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/Griplock-Labs/MobileApp-sub001/internal/domain"
)

func TestX25519_SharedSecretAgrees(t *testing.T) {
	aPriv, aPub, err := GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	bPriv, bPub, err := GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}

	s1, err := DH(aPriv, bPub)
	if err != nil {
		t.Fatalf("DH: %v", err)
	}
	s2, err := DH(bPriv, aPub)
	if err != nil {
		t.Fatalf("DH: %v", err)
	}
	if s1 != s2 {
		t.Fatal("shared secrets disagree")
	}
}

func TestEd25519_SeedIsDeterministic(t *testing.T) {
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		t.Fatalf("rand: %v", err)
	}

	pub1, priv1 := Ed25519FromSeed(seed)
	pub2, _ := Ed25519FromSeed(seed)
	if !bytes.Equal(pub1, pub2) {
		t.Fatal("same seed must yield the same public key")
	}

	msg := []byte("sign me")
	sig := SignEd25519(priv1, msg)
	if !VerifyEd25519(pub1, msg, sig) {
		t.Fatal("signature does not verify")
	}
	if VerifyEd25519(pub1, []byte("other"), sig) {
		t.Fatal("signature verified over the wrong message")
	}
}

func TestAddress_RoundTrip(t *testing.T) {
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		t.Fatalf("rand: %v", err)
	}
	pub, _ := Ed25519FromSeed(seed)

	addr := AddressFromPublicKey(pub)
	got, err := PublicKeyFromAddress(addr)
	if err != nil {
		t.Fatalf("PublicKeyFromAddress: %v", err)
	}
	if !bytes.Equal(got, pub) {
		t.Fatal("address round trip lost the public key")
	}
}

func TestAddress_RejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "abc", "0OIl", "tooshort"} {
		if _, err := PublicKeyFromAddress(domain.WalletAddress(bad)); !errors.Is(err, ErrBadAddress) {
			t.Fatalf("PublicKeyFromAddress(%q): want ErrBadAddress, got %v", bad, err)
		}
	}
}
