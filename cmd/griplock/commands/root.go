package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Griplock-Labs/MobileApp-sub001/internal/app"
	"github.com/Griplock-Labs/MobileApp-sub001/internal/logger"
)

var (
	home       string
	passphrase string
	pin        string
	tokenFile  string

	appCfg  app.Config
	appWire *app.Wire
)

// fileTokenReader stands in for the NFC/secure-element read on dev
// machines: the raw token bytes come from a file.
type fileTokenReader struct {
	path string
}

func (r fileTokenReader) ReadToken(_ context.Context) ([]byte, error) {
	if r.path == "" {
		return nil, fmt.Errorf("no token source configured (--token)")
	}
	return os.ReadFile(r.path)
}

func Execute() error {
	root := &cobra.Command{
		Use:   "griplock",
		Short: "Custodial signer that pairs with a dashboard over a relay",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".griplock")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			cfg, err := app.LoadConfig(home)
			if err != nil {
				return err
			}
			appCfg = cfg

			if err := logger.Init(cfg.LogFile); err != nil {
				return err
			}

			wire, err := app.NewWire(cfg, fileTokenReader{path: tokenFile}, nil)
			if err != nil {
				return err
			}
			appWire = wire
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Cleanup()
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.griplock)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the stored secret")
	root.PersistentFlags().StringVar(&pin, "pin", "", "holder PIN")
	root.PersistentFlags().StringVar(&tokenFile, "token", "", "file with raw physical-token bytes")

	root.AddCommand(pairCmd(), addressCmd(), stealthCmd(), inspectCmd(), setSecretCmd())
	return root.Execute()
}
