package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Griplock-Labs/MobileApp-sub001/internal/domain"
)

// WalletDB persists per-wallet state that must survive restarts: the
// last-used stealth address index and the pairing history.
type WalletDB struct {
	db *gorm.DB
}

// WalletIndex tracks the next stealth address index for a wallet.
type WalletIndex struct {
	gorm.Model
	Wallet    string `gorm:"uniqueIndex"`
	NextIndex uint32
}

// PairingRecord is one completed or failed pairing attempt.
type PairingRecord struct {
	gorm.Model
	RoomID   string `gorm:"index"`
	Wallet   string `gorm:"index"`
	Outcome  string `gorm:"index"` // connected, failed, expired
	PairedAt time.Time
}

// OpenWalletDB opens (creating if needed) the SQLite wallet database.
func OpenWalletDB(dbPath string) (*WalletDB, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("store: create wallet db dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open wallet db: %w", err)
	}
	if err := db.AutoMigrate(&WalletIndex{}, &PairingRecord{}); err != nil {
		return nil, fmt.Errorf("store: migrate wallet db: %w", err)
	}
	return &WalletDB{db: db}, nil
}

// NextIndex returns the next unused stealth index for wallet, creating the
// counter at zero on first use.
func (w *WalletDB) NextIndex(wallet domain.WalletAddress) (uint32, error) {
	var row WalletIndex
	err := w.db.Where("wallet = ?", wallet.String()).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = WalletIndex{Wallet: wallet.String(), NextIndex: 0}
		if err := w.db.Create(&row).Error; err != nil {
			return 0, err
		}
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.NextIndex, nil
}

// AdvanceIndex moves the counter past the index just claimed.
func (w *WalletDB) AdvanceIndex(wallet domain.WalletAddress) error {
	var row WalletIndex
	err := w.db.Where("wallet = ?", wallet.String()).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return w.db.Create(&WalletIndex{Wallet: wallet.String(), NextIndex: 1}).Error
	}
	if err != nil {
		return err
	}
	return w.db.Model(&row).Update("next_index", row.NextIndex+1).Error
}

// RecordPairing appends a pairing outcome to the history.
func (w *WalletDB) RecordPairing(roomID domain.RoomID, wallet domain.WalletAddress, outcome string) error {
	return w.db.Create(&PairingRecord{
		RoomID:   roomID.String(),
		Wallet:   wallet.String(),
		Outcome:  outcome,
		PairedAt: time.Now(),
	}).Error
}

// Compile-time assertion that WalletDB satisfies the index capability.
var _ domain.IndexStore = (*WalletDB)(nil)
