package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Griplock-Labs/MobileApp-sub001/internal/bootstrap"
)

// inspectCmd parses a pairing code without connecting.
func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <code>",
		Short: "Parse a pairing code and show its session descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := bootstrap.Parse(args[0], appCfg.RelayDomain)
			if err != nil {
				return err
			}
			fmt.Printf("room:   %s\n", desc.RoomID)
			fmt.Printf("secret: %s\n", desc.PairingSecret)
			fmt.Printf("relay:  %s\n", desc.RelayEndpoint)
			return nil
		},
	}
}

// setSecretCmd seals the derivation secret on device.
func setSecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-secret <secret>",
		Short: "Store the derivation secret under the passphrase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("a passphrase is required to seal the secret")
			}
			if err := appWire.Secrets.SetSecret(passphrase, args[0]); err != nil {
				return fmt.Errorf("storing secret: %w", err)
			}
			fmt.Println("Secret stored.")
			return nil
		},
	}
}
