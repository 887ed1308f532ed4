package app

import (
	"github.com/Griplock-Labs/MobileApp-sub001/internal/domain"
	"github.com/Griplock-Labs/MobileApp-sub001/internal/services/pairing"
	"github.com/Griplock-Labs/MobileApp-sub001/internal/store"
)

// Wire bundles the stores and services the CLI consumes.
type Wire struct {
	Secrets  *store.SecretFileStore
	WalletDB *store.WalletDB
	Pairing  *pairing.Service
}

// NewWire constructs the dependency graph from cfg. The token reader and
// broadcaster are platform capabilities supplied by the caller; chain may
// be nil.
func NewWire(cfg Config, tokens domain.TokenReader, chain domain.Broadcaster) (*Wire, error) {
	secrets := store.NewSecretFileStore(cfg.Home)

	walletDB, err := store.OpenWalletDB(cfg.WalletDBPath)
	if err != nil {
		return nil, err
	}

	svc := pairing.New(pairing.Config{
		DefaultRelayDomain: cfg.RelayDomain,
		AuthLevel:          domain.ParseAuthLevel(cfg.AuthLevel),
		MaxAttempts:        cfg.MaxAttempts,
		LockoutDuration:    cfg.LockoutDuration,
	}, secrets, tokens, walletDB, walletDB, chain)

	return &Wire{
		Secrets:  secrets,
		WalletDB: walletDB,
		Pairing:  svc,
	}, nil
}
