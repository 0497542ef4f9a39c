package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/mdindex/internal/site"
)

var buildCmd = &cobra.Command{
	Use:     "build",
	Aliases: []string{"b"},
	Short:   "Render index pages to a static HTML site",
	Long: `Render every discovered index page to HTML in the output directory.
Entry order and link targets are preserved exactly as written in the
Markdown source. Static assets are copied alongside when a static
directory is configured.

Examples:
  mdindex build                    # Build to the configured output directory
  mdindex build --output public    # Build to ./public
  mdindex build --clean            # Remove the output directory first`,
	RunE: runBuild,
}

var buildClean bool

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringP("output", "o", "site", "Output directory")
	buildCmd.Flags().BoolVar(&buildClean, "clean", false, "Remove the output directory before building")
	buildCmd.Flags().Int("workers", 4, "Number of parallel page builds")

	viper.BindPFlag("build.output_dir", buildCmd.Flags().Lookup("output"))
	viper.BindPFlag("build.workers", buildCmd.Flags().Lookup("workers"))
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, reg, err := scanIndexes()
	if err != nil {
		return err
	}

	builder := site.NewBuilder(reg, cfg.Build.OutputDir, cfg.Build.StaticDir, cfg.Build.Workers)

	if buildClean {
		if err := builder.Clean(); err != nil {
			return fmt.Errorf("failed to clean output directory: %w", err)
		}
	}

	builder.AddCallback(func(result site.BuildResult) {
		if result.Error != nil {
			fmt.Printf("FAIL %s: %v\n", result.Page.FilePath, result.Error)
			return
		}
		fmt.Printf("  ok %s -> %s (%v)\n", result.Page.FilePath, result.Output, result.Duration.Round(0))
	})

	if err := builder.BuildAll(context.Background()); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	metrics := builder.GetMetrics()
	fmt.Printf("\nBuilt %d pages (%d cached) in %v\n",
		metrics.SuccessfulBuilds, metrics.CacheHits, metrics.TotalDuration)
	return nil
}
