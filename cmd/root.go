// Package cmd provides the command-line interface for mdindex with
// configuration management supporting multiple configuration sources.
//
// Configuration System:
//
//	The CLI supports flexible configuration through multiple sources with clear precedence:
//	1. Command-line flags (--config, --port, etc.) - highest priority
//	2. MDINDEX_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (MDINDEX_SERVER_PORT, etc.)
//	4. Configuration files (.mdindex.yml) - lowest priority
//
// Environment Variables:
//
//	MDINDEX_CONFIG_FILE: Path to custom configuration file
//	MDINDEX_SERVER_PORT: Override server port
//	MDINDEX_SERVER_HOST: Override server host
//	MDINDEX_CHECK_CONCURRENCY: Override link checker concurrency
//	And more following the MDINDEX_<SECTION>_<OPTION> pattern
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mdindex",
	Short: "A toolkit for Markdown documentation index pages",
	Long: `mdindex maintains Markdown documentation index pages: files listing
"[label](url) - description" entries, like a cookbook or API reference
table of contents.

Key Features:
  • Index page discovery and parsing
  • Content linting (empty titles/descriptions, duplicates)
  • Link checking with caching and retries
  • Static site rendering with preserved entry order
  • Live preview server with reload on save
  • Full-text search over entries

Quick Start:
  mdindex init                    Scaffold a sample index page
  mdindex lint                    Lint all index pages
  mdindex check                   Verify every link resolves
  mdindex build                   Render indexes to a static site
  mdindex serve                   Start the live preview server

Command Aliases (for faster typing):
  init (i), serve (s), lint (l), check (c), build (b), watch (w)`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .mdindex.yml, can also use MDINDEX_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig initializes the configuration system with support for multiple
// config sources.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. MDINDEX_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .mdindex.yml in current directory
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("MDINDEX_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".mdindex")
	}

	// Enable automatic environment variable binding with MDINDEX_ prefix
	// Examples: MDINDEX_SERVER_PORT, MDINDEX_CHECK_CONCURRENCY
	viper.SetEnvPrefix("MDINDEX")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// If the file doesn't exist or has errors, Viper will use defaults
	// without failing
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
