package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	serverAddr string
	callerID   string
)

var rootCmd = &cobra.Command{
	Use:           "tariffwatch",
	Short:         "Tariff classification with human review and a hash-chained audit trail",
	Long:          "Suggests HS codes for product descriptions, routes low-confidence results to a\nhuman review queue, and records every classification and decision in a\ntamper-evident audit log. Suggestions are not legal advice.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to tariffwatch.yaml")
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "", "Use a running tariffwatch server at this address instead of local storage")
	rootCmd.PersistentFlags().StringVar(&callerID, "caller-id", "", "Caller identity sent to the server (rate limiting, logs)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
