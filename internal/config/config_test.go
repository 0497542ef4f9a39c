package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"./docs", "."}, cfg.Indexes.ScanPaths)
	assert.Contains(t, cfg.Indexes.ExcludePatterns, "README.md")
	assert.Equal(t, 8, cfg.Check.Concurrency)
	assert.Equal(t, 10, cfg.Check.TimeoutSecs)
	assert.Equal(t, 2, cfg.Check.Retries)
	assert.Equal(t, "mdindex-linkcheck/1.0", cfg.Check.UserAgent)
	assert.Equal(t, "site", cfg.Build.OutputDir)
	assert.Equal(t, 4, cfg.Build.Workers)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "development", cfg.Server.Environment)
}

func TestLoadOverrides(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("server.port", 3000)
	viper.Set("indexes.scan_paths", []string{"./manuals"})
	viper.Set("check.concurrency", 16)
	viper.Set("check.retries", 0)
	viper.Set("build.output_dir", "public")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, []string{"./manuals"}, cfg.Indexes.ScanPaths)
	assert.Equal(t, 16, cfg.Check.Concurrency)
	assert.Equal(t, 0, cfg.Check.Retries, "explicit zero retries survives")
	assert.Equal(t, "public", cfg.Build.OutputDir)
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("server.port", 99999)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
}

func TestLoadRejectsDangerousHost(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("server.host", "localhost; rm -rf /")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsTraversalScanPath(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("indexes.scan_paths", []string{"../../etc"})

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "traversal")
}

func TestLoadRejectsAbsoluteOutputDir(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("build.output_dir", "/var/www")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relative")
}
