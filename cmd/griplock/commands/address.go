package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// addressCmd derives and prints the primary wallet address.
func addressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Derive the wallet address from the token and factors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := appWire.Pairing
			defer svc.Close()

			addr, err := svc.Authenticate(cmd.Context(), passphrase, pin)
			if err != nil {
				return fmt.Errorf("deriving wallet: %w", err)
			}
			fmt.Println(addr)
			return nil
		},
	}
}

// stealthCmd claims the next unused stealth receiving address.
func stealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stealth",
		Short: "Claim the next stealth receiving address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := appWire.Pairing
			defer svc.Close()

			if _, err := svc.Authenticate(cmd.Context(), passphrase, pin); err != nil {
				return fmt.Errorf("deriving wallet: %w", err)
			}
			kp, err := svc.ClaimStealthAddress()
			if err != nil {
				return fmt.Errorf("claiming stealth address: %w", err)
			}
			fmt.Printf("index=%d address=%s\n", kp.Index, kp.Address)
			return nil
		},
	}
}
