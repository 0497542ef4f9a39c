package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/mdindex/internal/errors"
	"github.com/conneroisu/mdindex/internal/linkcheck"
)

var checkCmd = &cobra.Command{
	Use:     "check",
	Aliases: []string{"c"},
	Short:   "Verify that every listed link resolves",
	Long: `Resolve every link listed in the discovered index pages. External
http(s) URLs are probed over the network; relative links are resolved
against the index file and checked on disk; fragment targets must exist as
anchors in the fetched document.

The command exits non-zero when any link is broken.

Examples:
  mdindex check                        # Check all links
  mdindex check --skip-external        # Only check relative links on disk
  mdindex check --concurrency 16       # More parallel probes
  mdindex check --timeout 5            # 5 second per-request timeout
  mdindex check -f json                # Output results as JSON`,
	RunE: runCheck,
}

var (
	checkFormat  string
	checkVerbose bool
)

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "table", "Output format (table, json)")
	checkCmd.Flags().BoolVarP(&checkVerbose, "verbose", "v", false, "Show all results, not only broken links")
	checkCmd.Flags().Int("concurrency", 8, "Number of parallel probes")
	checkCmd.Flags().Int("timeout", 10, "Per-request timeout in seconds")
	checkCmd.Flags().Int("retries", 2, "Retries after 5xx or transport errors")
	checkCmd.Flags().Bool("skip-external", false, "Skip network probes of external URLs")
	checkCmd.Flags().Bool("allow-private", false, "Allow probing hosts on private networks")

	viper.BindPFlag("check.concurrency", checkCmd.Flags().Lookup("concurrency"))
	viper.BindPFlag("check.timeout_seconds", checkCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("check.retries", checkCmd.Flags().Lookup("retries"))
	viper.BindPFlag("check.skip_external", checkCmd.Flags().Lookup("skip-external"))
	viper.BindPFlag("check.allow_private", checkCmd.Flags().Lookup("allow-private"))
}

func runCheck(cmd *cobra.Command, args []string) error {
	if err := validateFormatFlag(cmd.Flags(), "table", "json"); err != nil {
		return err
	}

	cfg, reg, err := scanIndexes()
	if err != nil {
		return err
	}

	opts := linkcheck.Options{
		Concurrency:  cfg.Check.Concurrency,
		Timeout:      time.Duration(cfg.Check.TimeoutSecs) * time.Second,
		Retries:      cfg.Check.Retries,
		SkipExternal: cfg.Check.SkipExternal,
		AllowPrivate: cfg.Check.AllowPrivate,
		UserAgent:    cfg.Check.UserAgent,
	}

	checker, err := linkcheck.NewChecker(opts, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create link checker: %w", err)
	}

	collector := errors.NewCollector()
	results := checker.CheckPages(context.Background(), reg.GetAll(), collector)

	if err := outputCheckResults(results, checkFormat); err != nil {
		return err
	}

	for _, finding := range collector.Findings() {
		fmt.Fprintln(os.Stderr, finding.Error())
	}

	if collector.HasErrors() {
		return fmt.Errorf("broken links found")
	}
	return nil
}

func outputCheckResults(results []linkcheck.Result, format string) error {
	switch strings.ToLower(format) {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	case "table":
		broken := 0
		skipped := 0
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

		fmt.Fprintln(w, "STATUS\tURL\tDETAIL")
		for _, res := range results {
			switch res.Status {
			case linkcheck.StatusBroken:
				broken++
			case linkcheck.StatusSkipped:
				skipped++
			}
			if res.Status == linkcheck.StatusOK && !checkVerbose {
				continue
			}
			detail := res.Reason
			if detail == "" && res.StatusCode != 0 {
				detail = fmt.Sprintf("HTTP %d", res.StatusCode)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", res.Status, res.URL, detail)
		}
		w.Flush()

		fmt.Printf("\nChecked %d links: %d broken, %d skipped\n", len(results), broken, skipped)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
