package main

import (
	"os"

	"github.com/Griplock-Labs/MobileApp-sub001/cmd/griplock/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
