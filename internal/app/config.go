package app

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Home            string // config directory, e.g. $HOME/.griplock
	RelayDomain     string // default relay host when a code omits the URL
	AuthLevel       string // token | token+pin | token+secret | token+pin+secret
	WalletDBPath    string
	LogFile         string
	MaxAttempts     int
	LockoutDuration time.Duration
}

// LoadConfig reads config.json from home, falling back to defaults when the
// file does not exist.
func LoadConfig(home string) (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(home)

	setDefaults(v, home)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("app: reading config file: %w", err)
		}
	}

	return Config{
		Home:            home,
		RelayDomain:     v.GetString("relay_domain"),
		AuthLevel:       v.GetString("auth_level"),
		WalletDBPath:    v.GetString("wallet_db_path"),
		LogFile:         v.GetString("log_file"),
		MaxAttempts:     v.GetInt("max_attempts"),
		LockoutDuration: time.Duration(v.GetInt("lockout_minutes")) * time.Minute,
	}, nil
}

func setDefaults(v *viper.Viper, home string) {
	v.SetDefault("relay_domain", "relay.griplock.io")
	v.SetDefault("auth_level", "token+pin+secret")
	v.SetDefault("wallet_db_path", filepath.Join(home, "wallet.db"))
	v.SetDefault("log_file", filepath.Join(home, "griplock.log"))
	v.SetDefault("max_attempts", 5)
	v.SetDefault("lockout_minutes", 5)
}
