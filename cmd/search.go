package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conneroisu/mdindex/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search index entries by title, description, or section",
	Long: `Run a full-text query over every entry across the discovered index
pages. Results are ranked by relevance.

Examples:
  mdindex search authentication        # Match query over all entries
  mdindex search "rate limiting" --phrase  # Exact phrase match
  mdindex search auth --offset 10      # Next page of results
  mdindex search auth -f json          # Output as JSON`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var (
	searchFormat string
	searchPhrase bool
	searchOffset uint64
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVarP(&searchFormat, "format", "f", "table", "Output format (table, json)")
	searchCmd.Flags().BoolVar(&searchPhrase, "phrase", false, "Match the query as an exact phrase")
	searchCmd.Flags().Uint64Var(&searchOffset, "offset", 0, "Skip this many results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := validateFormatFlag(cmd.Flags(), "table", "json"); err != nil {
		return err
	}

	_, reg, err := scanIndexes()
	if err != nil {
		return err
	}

	indexer, err := search.NewEntryIndexer()
	if err != nil {
		return fmt.Errorf("failed to create search index: %w", err)
	}
	defer indexer.Close()

	if err := indexer.IndexAll(reg.Entries()); err != nil {
		return fmt.Errorf("failed to index entries: %w", err)
	}

	query := search.Query{
		Type:       search.QueryTypeMatch,
		Expression: strings.Join(args, " "),
		Offset:     searchOffset,
	}
	if searchPhrase {
		query.Type = search.QueryTypePhrase
	}

	hits, err := indexer.Search(query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	switch strings.ToLower(searchFormat) {
	case "json":
		type hitOutput struct {
			Title       string  `json:"title"`
			URL         string  `json:"url"`
			Description string  `json:"description"`
			File        string  `json:"file"`
			Line        int     `json:"line"`
			Score       float64 `json:"score"`
		}
		output := make([]hitOutput, len(hits))
		for i, hit := range hits {
			output[i] = hitOutput{
				Title:       hit.Entry.Title,
				URL:         hit.Entry.URL,
				Description: hit.Entry.Description,
				File:        hit.Entry.FilePath,
				Line:        hit.Entry.Line,
				Score:       hit.Score,
			}
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	case "table":
		if len(hits) == 0 {
			fmt.Println("No matches.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		defer w.Flush()

		fmt.Fprintln(w, "SCORE\tTITLE\tURL\tFILE")
		for _, hit := range hits {
			fmt.Fprintf(w, "%.2f\t%s\t%s\t%s:%d\n",
				hit.Score, hit.Entry.Title, hit.Entry.URL, hit.Entry.FilePath, hit.Entry.Line)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", searchFormat)
	}
}
