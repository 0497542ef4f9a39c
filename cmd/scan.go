package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/conneroisu/mdindex/internal/config"
	"github.com/conneroisu/mdindex/internal/logging"
	"github.com/conneroisu/mdindex/internal/registry"
	"github.com/conneroisu/mdindex/internal/scanner"
)

// newLogger builds the command logger honoring the --log-level flag
func newLogger() logging.Logger {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(viper.GetString("log-level"))
	return logging.NewLogger(cfg).WithComponent("cli")
}

// scanIndexes loads the configuration and scans every configured path,
// returning the populated registry. Scan failures on individual paths are
// warnings, not fatal.
func scanIndexes() (*config.Config, *registry.PageRegistry, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger()
	ctx := context.Background()

	reg := registry.NewPageRegistry()
	pageScanner := scanner.NewPageScanner(reg, cfg.Indexes.ExcludePatterns...)
	defer pageScanner.Close()

	for _, scanPath := range cfg.Indexes.ScanPaths {
		if err := pageScanner.ScanDirectory(scanPath); err != nil {
			logger.Warn(ctx, err, "failed to scan directory", "path", scanPath)
		}
	}

	logger.Debug(ctx, "scan complete",
		"pages", reg.Count(),
		"entries", reg.EntryCount(),
	)

	return cfg, reg, nil
}
