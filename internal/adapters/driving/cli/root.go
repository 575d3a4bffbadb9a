// Package cli implements the cobra command-line interface for imgtriage.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/halcyon-forensics/imgtriage/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "imgtriage",
	Short: "Triage application databases from a decrypted device image",
	Long: `imgtriage locates third-party application databases inside a mounted
(already-decrypted) device filesystem image, extracts their schema and
sample content, and ranks them by forensic relevance for analyst review.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"print pipeline progress to stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
