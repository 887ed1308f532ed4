package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Griplock-Labs/MobileApp-sub001/internal/domain"
)

// pairCmd authenticates the holder and pairs with the dashboard whose code
// was scanned, then keeps the session alive answering sign requests.
func pairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pair <code>",
		Short: "Pair with a dashboard through the relay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := appWire.Pairing
			defer svc.Close()

			addr, err := svc.Authenticate(cmd.Context(), passphrase, pin)
			if err != nil {
				svc.RecordFailedAttempt()
				return fmt.Errorf("authenticating: %w", err)
			}
			fmt.Printf("Authenticated. Wallet %s\n", addr)

			svc.SetNotifier(func(st domain.SessionStatus) {
				fmt.Printf("Session: %s\n", st)
			}, func(reason domain.DisconnectReason) {
				fmt.Printf("Disconnected: %s\n", reason)
			})

			if err := svc.Pair(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("pairing: %w", err)
			}

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			select {
			case <-svc.Done():
			case <-sig:
			case <-cmd.Context().Done():
			}
			return nil
		},
	}
}
