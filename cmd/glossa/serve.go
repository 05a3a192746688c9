package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/praetorian-inc/glossa/pkg/scanner"
	"github.com/praetorian-inc/glossa/pkg/serve"
	"github.com/spf13/cobra"
)

var (
	serveRulesPath    string
	serveRuleset      string
	serveContextLines int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Tokenize text sent as NDJSON on standard input",
	Long: `Run glossa as a long-lived process that reads one JSON request per line
from standard input and writes one JSON response per line to standard
output. Rules are compiled once at startup.

Request types: tokenize, tokenize_batch, match, findings, close.
The process exits when stdin closes, on "close", or on SIGINT/SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveRulesPath, "rules", "", "Path to custom rules file or directory")
	serveCmd.Flags().StringVar(&serveRuleset, "ruleset", "", "Builtin ruleset ID")
	serveCmd.Flags().IntVar(&serveContextLines, "context-lines", scanner.DefaultContextLines, "Lines of context before/after matches")
}

func runServe(cmd *cobra.Command, args []string) error {
	rules, err := ruleSource{path: serveRulesPath, ruleset: serveRuleset}.load()
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}

	core, err := scanner.NewCoreWithConfig(scanner.Config{
		Rules:        rules,
		ContextLines: serveContextLines,
	})
	if err != nil {
		return err
	}
	defer core.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	return serve.NewServer(core, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
}
