package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/quotecrawl/pkg/models"
)

func newCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "quotecrawl"}
	RegisterFlags(cmd)
	// Point at a missing file so a stray .env in the package dir is ignored.
	args = append([]string{"--env-file", filepath.Join(t.TempDir(), "absent.env")}, args...)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newCmd(t))
	require.NoError(t, err)

	assert.Equal(t, DefaultStartURL, cfg.StartURL)
	assert.Equal(t, DefaultOutputPath, cfg.OutputPath)
	assert.False(t, cfg.Dump)
	assert.Equal(t, DefaultDumpDir, cfg.DumpDir)
	assert.Equal(t, models.DumpHTML, cfg.DumpFormat)
	assert.Equal(t, models.EngineBrowser, cfg.Engine)
	assert.True(t, cfg.Headless)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
	assert.Zero(t, cfg.Timeout)
	assert.Zero(t, cfg.MaxPages)
	assert.True(t, cfg.StopOnRevisit)
	assert.Equal(t, DefaultLogFile, cfg.LogFile)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("QUOTES_START_URL", "https://example.com/js/")
	t.Setenv("QUOTES_DUMP", "true")
	t.Setenv("QUOTES_ENGINE", "STATIC")
	t.Setenv("QUOTES_TIMEOUT", "45s")
	t.Setenv("QUOTES_MAX_PAGES", "3")
	t.Setenv("QUOTES_STOP_ON_REVISIT", "false")

	cfg, err := Load(newCmd(t))
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/js/", cfg.StartURL)
	assert.True(t, cfg.Dump)
	assert.Equal(t, models.EngineStatic, cfg.Engine)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.MaxPages)
	assert.False(t, cfg.StopOnRevisit)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("QUOTES_OUTPUT", "from-env.json")
	t.Setenv("QUOTES_MAX_PAGES", "3")

	cfg, err := Load(newCmd(t,
		"-o", "from-flag.csv",
		"--max-pages", "7",
		"--dump-format", "markdown",
		"-H", "Accept-Language: en-US",
		"-v",
	))
	require.NoError(t, err)

	assert.Equal(t, "from-flag.csv", cfg.OutputPath)
	assert.Equal(t, 7, cfg.MaxPages)
	assert.Equal(t, models.DumpMarkdown, cfg.DumpFormat)
	assert.Equal(t, map[string]string{"Accept-Language": "en-US"}, cfg.Headers)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawl.env")
	require.NoError(t, os.WriteFile(path, []byte("QUOTES_DUMP_DIR=pages\nQUOTES_PROXY=http://localhost:8080\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("QUOTES_DUMP_DIR")
		os.Unsetenv("QUOTES_PROXY")
	})

	cmd := &cobra.Command{Use: "quotecrawl"}
	RegisterFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--env-file", path}))

	cfg, err := Load(cmd)
	require.NoError(t, err)
	assert.Equal(t, "pages", cfg.DumpDir)
	assert.Equal(t, "http://localhost:8080", cfg.Proxy)
}

func TestLoad_ChromePathFallback(t *testing.T) {
	t.Setenv("QUOTES_CHROME_PATH", "")
	t.Setenv("CHROME_PATH", "/opt/chrome/chrome")

	cfg, err := Load(newCmd(t))
	require.NoError(t, err)
	assert.Equal(t, "/opt/chrome/chrome", cfg.ChromePath)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("QUOTES_HEADLESS", "sometimes")

	_, err := Load(newCmd(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QUOTES_HEADLESS")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"ftp url", func(c *Config) { c.StartURL = "ftp://quotes.toscrape.com/" }, "scheme"},
		{"no host", func(c *Config) { c.StartURL = "http:///js/" }, "missing host"},
		{"empty output", func(c *Config) { c.OutputPath = "" }, "output path"},
		{"unknown engine", func(c *Config) { c.Engine = "selenium" }, "unknown engine"},
		{"unknown dump format", func(c *Config) { c.DumpFormat = "pdf" }, "unknown dump format"},
		{"dump without dir", func(c *Config) { c.Dump = true; c.DumpDir = "" }, "dump directory"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout"},
		{"negative max pages", func(c *Config) { c.MaxPages = -1 }, "max pages"},
		{"unknown log level", func(c *Config) { c.LogLevel = "trace" }, "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
