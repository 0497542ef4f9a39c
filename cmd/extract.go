package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/mdindex/internal/extract"
	"github.com/conneroisu/mdindex/internal/scanner"
	"github.com/conneroisu/mdindex/internal/validation"
)

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Draft an index entry from a live documentation page",
	Long: `Fetch a documentation page and draft a ready-to-paste index entry from
its title and meta description. With --lead, the page's opening content is
printed as Markdown for context.

Examples:
  mdindex extract https://example.com/docs/auth
  mdindex extract https://example.com/docs/auth --lead`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

var (
	extractLead    bool
	extractTimeout int
)

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().BoolVar(&extractLead, "lead", false, "Also print the page lead as Markdown")
	extractCmd.Flags().IntVar(&extractTimeout, "timeout", 15, "Fetch timeout in seconds")
}

func runExtract(cmd *cobra.Command, args []string) error {
	rawURL := args[0]
	if err := validation.ValidateURL(rawURL); err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(extractTimeout)*time.Second)
	defer cancel()

	extractor := extract.NewExtractor(nil)
	draft, err := extractor.Draft(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	fmt.Println(scanner.FormatEntry(draft.Entry))

	if extractLead && draft.Lead != "" {
		fmt.Println()
		fmt.Println(draft.Lead)
	}
	return nil
}
