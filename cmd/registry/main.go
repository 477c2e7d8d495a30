package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "registry",
		Short: "Delegate impact registry",
		Long: `registry tracks delegates, lets the registry administrator issue them
credentials carrying an impact score, and serves each delegate's running total.

Configuration comes from REGISTRY_CONFIG (YAML) and environment overrides.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
