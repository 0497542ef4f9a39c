package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:     "init [name]",
	Aliases: []string{"i"},
	Short:   "Initialize a documentation index project",
	Long: `Initialize a documentation index project with a sample index page and
configuration file. If no name is provided, initializes in the current
directory.

Examples:
  mdindex init                 # Initialize in current directory with a sample index
  mdindex init my-docs         # Initialize in new directory 'my-docs'
  mdindex init --minimal       # Config file only, no sample index`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var initMinimal bool

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initMinimal, "minimal", false, "Config file only, no sample index")
}

func runInit(cmd *cobra.Command, args []string) error {
	var projectDir string

	if len(args) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		projectDir = cwd
	} else {
		projectDir = args[0]
		if err := os.MkdirAll(projectDir, 0o755); err != nil {
			return fmt.Errorf("failed to create project directory: %w", err)
		}
	}

	fmt.Printf("Initializing mdindex project in %s\n", projectDir)

	if err := createConfigFile(projectDir); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	if !initMinimal {
		if err := createSampleIndex(projectDir); err != nil {
			return fmt.Errorf("failed to create sample index: %w", err)
		}
	}

	fmt.Println("Done. Next steps:")
	fmt.Println("  mdindex lint     # Lint the index pages")
	fmt.Println("  mdindex serve    # Start the live preview server")
	return nil
}

const defaultConfigContent = `server:
  port: 8080
  host: localhost
  open: false
  environment: development

indexes:
  scan_paths:
    - ./docs
  exclude_patterns:
    - README.md
    - CHANGELOG.md

check:
  concurrency: 8
  timeout_seconds: 10
  retries: 2
  skip_external: false

build:
  output_dir: site
`

const sampleIndexContent = `# Cookbook

Recipes for common tasks, one link per line.

## Getting Started

- [Installation](install.md) - How to install and verify the toolchain.
- [Quickstart](quickstart.md) - Build your first page in five minutes.

## Guides

- [Configuration](https://example.com/docs/configuration) - Every setting explained.
- [Deployment](https://example.com/docs/deployment) - Shipping to production.
`

func createConfigFile(projectDir string) error {
	configPath := filepath.Join(projectDir, ".mdindex.yml")
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config file already exists: %s\n", configPath)
		return nil
	}
	return os.WriteFile(configPath, []byte(defaultConfigContent), 0o644)
}

func createSampleIndex(projectDir string) error {
	docsDir := filepath.Join(projectDir, "docs")
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		return err
	}

	indexPath := filepath.Join(docsDir, "cookbook.md")
	if _, err := os.Stat(indexPath); err == nil {
		fmt.Printf("Sample index already exists: %s\n", indexPath)
		return nil
	}
	return os.WriteFile(indexPath, []byte(sampleIndexContent), 0o644)
}
