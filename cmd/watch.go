package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/mdindex/internal/config"
	"github.com/conneroisu/mdindex/internal/lint"
	"github.com/conneroisu/mdindex/internal/registry"
	"github.com/conneroisu/mdindex/internal/scanner"
	"github.com/conneroisu/mdindex/internal/site"
	"github.com/conneroisu/mdindex/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Lint and rebuild on file changes",
	Long: `Watch the configured scan paths. Whenever a Markdown file changes the
affected pages are rescanned, linted, and the static site is rebuilt. Like
'mdindex lint' and 'mdindex build' in a loop, without the preview server.

Examples:
  mdindex watch                    # Watch, lint, and rebuild on change`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	reg := registry.NewPageRegistry()
	pageScanner := scanner.NewPageScanner(reg, cfg.Indexes.ExcludePatterns...)
	defer pageScanner.Close()

	for _, scanPath := range cfg.Indexes.ScanPaths {
		if err := pageScanner.ScanDirectory(scanPath); err != nil {
			log.Printf("Warning: failed to scan directory %s: %v", scanPath, err)
		}
	}

	builder := site.NewBuilder(reg, cfg.Build.OutputDir, cfg.Build.StaticDir, cfg.Build.Workers)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initial build
	if err := builder.BuildAll(ctx); err != nil {
		log.Printf("Initial build failed: %v", err)
	}

	fileWatcher, err := watcher.NewFileWatcher(300 * time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fileWatcher.Stop()

	fileWatcher.AddFilter(watcher.MarkdownFilter)
	fileWatcher.AddFilter(watcher.NoGitFilter)
	fileWatcher.AddFilter(watcher.NoOutputFilter(cfg.Build.OutputDir))

	engine := lint.NewEngine(nil)
	fileWatcher.AddHandler(makeChangeHandler(ctx, reg, pageScanner, builder, engine))

	for _, path := range cfg.Indexes.ScanPaths {
		if err := fileWatcher.AddRecursive(path); err != nil {
			log.Printf("Failed to watch path %s: %v", path, err)
		}
	}

	if err := fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	fmt.Printf("Watching %v, building to %s (Ctrl+C to stop)\n",
		cfg.Indexes.ScanPaths, cfg.Build.OutputDir)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	fmt.Println("Stopping watcher")
	return nil
}

// makeChangeHandler rescans changed files, lints every registered page, and
// rebuilds the site. The engine's collector is cleared per batch so findings
// reflect the current state of the tree.
func makeChangeHandler(ctx context.Context, reg *registry.PageRegistry, pageScanner *scanner.PageScanner, builder *site.Builder, engine *lint.Engine) watcher.ChangeHandler {
	return func(events []watcher.ChangeEvent) error {
		for _, event := range events {
			log.Printf("File changed: %s (%s)", event.Path, event.Type)
			if event.Type == watcher.EventTypeDeleted || event.Type == watcher.EventTypeRenamed {
				reg.Remove(event.Path)
				continue
			}
			if err := pageScanner.ScanFile(event.Path); err != nil {
				log.Printf("Failed to rescan file %s: %v", event.Path, err)
			}
		}

		engine.Collector().Clear()
		for _, finding := range engine.LintPages(reg.GetAll()) {
			log.Printf("Lint: %s", finding.Error())
		}

		if err := builder.BuildAll(ctx); err != nil {
			log.Printf("Rebuild failed: %v", err)
			return nil
		}
		log.Printf("Rebuilt site")
		return nil
	}
}
