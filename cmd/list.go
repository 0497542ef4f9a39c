package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/mdindex/internal/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all discovered index entries",
	Long: `List every entry across the discovered index pages with its title,
link target, and description, in source order per page.

Examples:
  mdindex list                    # List all entries in table format
  mdindex list -f json            # Output as JSON (short flag)
  mdindex list --format csv       # Output as CSV
  mdindex list --pages            # List pages instead of entries`,
	RunE: runList,
}

var (
	listFormat string
	listPages  bool
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "Output format (table, json, yaml, csv)")
	listCmd.Flags().BoolVar(&listPages, "pages", false, "List index pages instead of entries")
}

func runList(cmd *cobra.Command, args []string) error {
	if err := validateFormatFlag(cmd.Flags(), "table", "json", "yaml", "csv"); err != nil {
		return err
	}

	_, reg, err := scanIndexes()
	if err != nil {
		return err
	}

	if listPages {
		return outputPages(reg.GetAll(), listFormat)
	}

	entries := reg.Entries()
	if len(entries) == 0 {
		fmt.Println("No entries found.")
		return nil
	}

	switch strings.ToLower(listFormat) {
	case "json":
		return outputEntriesJSON(entries)
	case "yaml":
		return outputEntriesYAML(entries)
	case "table":
		return outputEntriesTable(entries)
	case "csv":
		return outputEntriesCSV(entries)
	default:
		return fmt.Errorf("unsupported format: %s", listFormat)
	}
}

func entryOutputMap(entry *types.IndexEntry) map[string]interface{} {
	item := map[string]interface{}{
		"title":       entry.Title,
		"url":         entry.URL,
		"description": entry.Description,
		"file_path":   entry.FilePath,
		"line":        entry.Line,
	}
	if entry.Section != "" {
		item["section"] = entry.Section
	}
	return item
}

func outputEntriesJSON(entries []*types.IndexEntry) error {
	output := make([]map[string]interface{}, len(entries))
	for i, entry := range entries {
		output[i] = entryOutputMap(entry)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func outputEntriesYAML(entries []*types.IndexEntry) error {
	output := make([]map[string]interface{}, len(entries))
	for i, entry := range entries {
		output[i] = entryOutputMap(entry)
	}

	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	return encoder.Encode(output)
}

func outputEntriesTable(entries []*types.IndexEntry) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "TITLE\tURL\tSECTION\tFILE\tLINE")
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			entry.Title,
			entry.URL,
			entry.Section,
			entry.FilePath,
			entry.Line,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d entries\n", len(entries))
	return nil
}

func outputEntriesCSV(entries []*types.IndexEntry) error {
	fmt.Println("title,url,description,section,file_path,line")
	for _, entry := range entries {
		fmt.Printf("%s,%s,%s,%s,%s,%d\n",
			csvEscape(entry.Title),
			csvEscape(entry.URL),
			csvEscape(entry.Description),
			csvEscape(entry.Section),
			csvEscape(entry.FilePath),
			entry.Line,
		)
	}
	return nil
}

func csvEscape(field string) string {
	if strings.ContainsAny(field, ",\"\n") {
		return "\"" + strings.ReplaceAll(field, "\"", "\"\"") + "\""
	}
	return field
}

func outputPages(pages []*types.IndexPage, format string) error {
	if len(pages) == 0 {
		fmt.Println("No index pages found.")
		return nil
	}

	type pageOutput struct {
		Name    string `json:"name" yaml:"name"`
		Title   string `json:"title" yaml:"title"`
		File    string `json:"file" yaml:"file"`
		Entries int    `json:"entries" yaml:"entries"`
	}

	output := make([]pageOutput, len(pages))
	for i, page := range pages {
		output[i] = pageOutput{
			Name:    page.Name(),
			Title:   page.Title,
			File:    page.FilePath,
			Entries: len(page.Entries),
		}
	}

	switch strings.ToLower(format) {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)
		defer encoder.Close()
		return encoder.Encode(output)
	case "table", "csv":
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		defer w.Flush()

		fmt.Fprintln(w, "NAME\tTITLE\tFILE\tENTRIES")
		for _, p := range output {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", p.Name, p.Title, p.File, p.Entries)
		}
		fmt.Fprintf(w, "\nTotal: %d pages\n", len(output))
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
