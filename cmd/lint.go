package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/mdindex/internal/errors"
	"github.com/conneroisu/mdindex/internal/lint"
)

var lintCmd = &cobra.Command{
	Use:     "lint",
	Aliases: []string{"l"},
	Short:   "Lint index pages for content problems",
	Long: `Lint every discovered index page. Findings include entries with empty
titles or descriptions, duplicate entries within one index, malformed list
items, and unparseable URLs. Link resolution is checked by 'mdindex check'.

The command exits non-zero when any error-severity finding exists; with
--strict, warnings also fail the run.

Examples:
  mdindex lint                  # Lint all index pages, table output
  mdindex lint -f json          # Output findings as JSON
  mdindex lint --strict         # Treat warnings as errors`,
	RunE: runLint,
}

var (
	lintFormat string
	lintStrict bool
)

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFormat, "format", "f", "table", "Output format (table, json, yaml)")
	lintCmd.Flags().BoolVar(&lintStrict, "strict", false, "Treat warnings as errors")
}

func runLint(cmd *cobra.Command, args []string) error {
	if err := validateFormatFlag(cmd.Flags(), "table", "json", "yaml"); err != nil {
		return err
	}

	_, reg, err := scanIndexes()
	if err != nil {
		return err
	}

	engine := lint.NewEngine(nil)
	findings := engine.LintPages(reg.GetAll())

	if err := outputFindings(findings, lintFormat); err != nil {
		return err
	}

	if engine.Collector().HasErrors() {
		return fmt.Errorf("lint found errors")
	}
	if lintStrict && engine.Collector().HasWarnings() {
		return fmt.Errorf("lint found warnings (strict mode)")
	}
	return nil
}

type lintFindingOutput struct {
	Rule     string `json:"rule" yaml:"rule"`
	File     string `json:"file" yaml:"file"`
	Line     int    `json:"line" yaml:"line"`
	Message  string `json:"message" yaml:"message"`
	Severity string `json:"severity" yaml:"severity"`
}

func outputFindings(findings []errors.LintError, format string) error {
	output := make([]lintFindingOutput, len(findings))
	for i, f := range findings {
		output[i] = lintFindingOutput{
			Rule:     f.Rule,
			File:     f.File,
			Line:     f.Line,
			Message:  f.Message,
			Severity: f.Severity.String(),
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
	case "table":
		if len(output) == 0 {
			fmt.Println("No problems found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		defer w.Flush()

		fmt.Fprintln(w, "FILE\tLINE\tSEVERITY\tRULE\tMESSAGE")
		for _, f := range output {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", f.File, f.Line, f.Severity, f.Rule, f.Message)
		}
		fmt.Fprintf(w, "\nTotal: %d findings\n", len(output))
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
