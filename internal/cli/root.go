// Package cli implements the txwarden command-line interface.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "txwarden",
	Short: "Admission control for outbound blockchain transactions",
	Long:  "Gates outbound transactions behind independent rater review and arbitration.\nEvery submission runs to a terminal APPROVED or REJECTED decision;\nrejected transactions never reach the chain.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
