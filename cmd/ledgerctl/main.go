package main

import (
	"fmt"
	"os"

	"wallet_ledger/cmd/ledgerctl/cmd"
	"wallet_ledger/internal/config"
)

func main() {
	cfg := config.LoadConfig() // Load configuration
	if err := cmd.NewRootCmd(cmd.FromConfig(cfg)).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
