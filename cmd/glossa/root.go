package main

import (
	"github.com/spf13/cobra"

	"github.com/praetorian-inc/glossa/pkg/logger"
)

var (
	verbose bool
	quiet   bool
	logJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "glossa",
	Short: "Glossa - longest-match tokenizer for text and markdown",
	Long: `Glossa splits text into tokens using pattern tries. A rule lists patterns
in glossa notation (literals, 「a〜z」 classes, 〸 repetition and 〔label〡...〕
groups); at every position the longest token any rule recognises wins.

Results of a scan are stored in a SQLite database and can be reported
as human-readable text, JSON or SARIF.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Initialize(logLevel(), logJSON)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs as JSON")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(markdownCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// logLevel maps --verbose and --quiet to a logger level. Quiet wins.
func logLevel() string {
	switch {
	case quiet:
		return "error"
	case verbose:
		return "debug"
	default:
		return "warn"
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
