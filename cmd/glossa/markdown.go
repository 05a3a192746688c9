package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/praetorian-inc/glossa/pkg/markdown"
	"github.com/praetorian-inc/glossa/pkg/tag"
	"github.com/spf13/cobra"
)

var markdownFormat string

var markdownCmd = &cobra.Command{
	Use:   "markdown [file]",
	Short: "Tokenize inline markdown",
	Long: `Split lines of inline markdown into text tags flagged bold, italic or
code, separated by br tags. Reads standard input when no file (or "-")
is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMarkdown,
}

func init() {
	markdownCmd.Flags().StringVar(&markdownFormat, "format", "tags", "Output format: tags, json, html")
}

func runMarkdown(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != stdinTarget {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer f.Close()
		in = f
	}

	tags, err := markdown.ParseReader(in)
	if err != nil {
		return fmt.Errorf("reading markdown: %w", err)
	}

	out := cmd.OutOrStdout()
	switch markdownFormat {
	case "tags":
		for _, t := range tags {
			fmt.Fprintln(out, t)
		}
		return nil
	case "json":
		if tags == nil {
			tags = []*tag.Tag{}
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)
		return encoder.Encode(tags)
	case "html":
		fmt.Fprintln(out, markdown.RenderHTML(tags))
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", markdownFormat)
	}
}
