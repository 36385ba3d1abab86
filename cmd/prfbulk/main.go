// Command prfbulk converts a PRF payment file into bulk-import files from
// the command line, without the HTTP server.
package main

import (
	"os"

	"github.com/JonMunkholm/prfbulk/internal/logging"
	"github.com/spf13/cobra"
)

var (
	logLevel  string
	logFormat string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "prfbulk",
		Short: "Convert PRF payment files into bulk-import CSVs",
		Long: `prfbulk validates a PRF payment CSV (or .xlsx), splits valid rows into
new member and existing member files of at most 300 rows, numbers them
from a start sequence and packages everything into one ZIP archive.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Logs go to stderr so stdout stays clean for command output.
			logging.SetupWriter(cmd.ErrOrStderr(), logLevel, logFormat)
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	root.AddCommand(newConvertCmd(), newHeadersCmd(), newTemplateCmd(), newInspectCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
