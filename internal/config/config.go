package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/law-makers/quotecrawl/internal/utils/headers"
	"github.com/law-makers/quotecrawl/pkg/models"
)

// Config holds application configuration values
type Config struct {
	// Crawl
	StartURL      string
	OutputPath    string
	MaxPages      int
	StopOnRevisit bool

	// Dumps
	Dump       bool
	DumpDir    string
	DumpFormat models.DumpFormat

	// Session
	Engine     models.EngineKind
	Headless   bool
	UserAgent  string
	ChromePath string
	Proxy      string
	Headers    map[string]string
	Timeout    time.Duration

	// Logging
	LogFile  string
	LogLevel string
	JSONLog  bool
	Quiet    bool

	MetricsFile string
}

// Default returns a Config populated with the default values
func Default() *Config {
	return &Config{
		StartURL:      DefaultStartURL,
		OutputPath:    DefaultOutputPath,
		MaxPages:      DefaultMaxPages,
		StopOnRevisit: DefaultStopOnRevisit,
		Dump:          DefaultDump,
		DumpDir:       DefaultDumpDir,
		DumpFormat:    models.DumpFormat(DefaultDumpFormat),
		Engine:        models.EngineKind(DefaultEngine),
		Headless:      DefaultHeadless,
		UserAgent:     DefaultUserAgent,
		Timeout:       DefaultTimeout,
		LogFile:       DefaultLogFile,
		LogLevel:      DefaultLogLevel,
		JSONLog:       DefaultJSONLog,
		Headers:       map[string]string{},
	}
}

// Load builds a Config by combining defaults, an optional .env file, QUOTES_*
// environment variables, and CLI flags, in that order of precedence.
// Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Default()

	envFile := DefaultEnvFile
	if cmd != nil {
		if f := cmd.Flags().Lookup("env-file"); f != nil {
			envFile = f.Value.String()
		}
	}
	if envFile != "" {
		// Existing variables win over the file.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	if cmd != nil {
		if err := applyFlags(cfg, cmd); err != nil {
			return nil, fmt.Errorf("invalid flags: %w", err)
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := getenv("START_URL"); v != "" {
		cfg.StartURL = v
	}
	if v := getenv("OUTPUT"); v != "" {
		cfg.OutputPath = v
	}
	if v := getenv("DUMP_DIR"); v != "" {
		cfg.DumpDir = v
	}
	if v := getenv("DUMP_FORMAT"); v != "" {
		cfg.DumpFormat = models.DumpFormat(strings.ToLower(v))
	}
	if v := getenv("ENGINE"); v != "" {
		cfg.Engine = models.EngineKind(strings.ToLower(v))
	}
	if v := getenv("USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := getenv("PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := getenv("CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	} else if v := os.Getenv("CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := getenv("LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := getenv("METRICS_FILE"); v != "" {
		cfg.MetricsFile = v
	}

	var err error
	if cfg.Dump, err = envBool("DUMP", cfg.Dump); err != nil {
		return err
	}
	if cfg.Headless, err = envBool("HEADLESS", cfg.Headless); err != nil {
		return err
	}
	if cfg.StopOnRevisit, err = envBool("STOP_ON_REVISIT", cfg.StopOnRevisit); err != nil {
		return err
	}
	if v := getenv("TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err)
		}
		cfg.Timeout = d
	}
	if v := getenv("MAX_PAGES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAX_PAGES: %w", EnvPrefix, err)
		}
		cfg.MaxPages = n
	}
	return nil
}

// applyFlags overrides cfg with the flags the user actually set
func applyFlags(cfg *Config, cmd *cobra.Command) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	var err error
	if changed("start-url") {
		cfg.StartURL, _ = flags.GetString("start-url")
	}
	if changed("output") {
		cfg.OutputPath, _ = flags.GetString("output")
	}
	if changed("dump") {
		cfg.Dump, _ = flags.GetBool("dump")
	}
	if changed("dump-dir") {
		cfg.DumpDir, _ = flags.GetString("dump-dir")
	}
	if changed("dump-format") {
		s, _ := flags.GetString("dump-format")
		cfg.DumpFormat = models.DumpFormat(strings.ToLower(s))
	}
	if changed("engine") {
		s, _ := flags.GetString("engine")
		cfg.Engine = models.EngineKind(strings.ToLower(s))
	}
	if changed("headless") {
		cfg.Headless, _ = flags.GetBool("headless")
	}
	if changed("user-agent") {
		cfg.UserAgent, _ = flags.GetString("user-agent")
	}
	if changed("proxy") {
		cfg.Proxy, _ = flags.GetString("proxy")
	}
	if changed("header") {
		raw, _ := flags.GetStringArray("header")
		cfg.Headers = headers.ParseHeaders(raw)
	}
	if changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if changed("max-pages") {
		if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
			return err
		}
	}
	if changed("stop-on-revisit") {
		cfg.StopOnRevisit, _ = flags.GetBool("stop-on-revisit")
	}
	if changed("log-file") {
		cfg.LogFile, _ = flags.GetString("log-file")
	}
	if changed("metrics-file") {
		cfg.MetricsFile, _ = flags.GetString("metrics-file")
	}
	if v, _ := flags.GetBool("json"); v {
		cfg.JSONLog = true
	}
	if v, _ := flags.GetBool("quiet"); v {
		cfg.Quiet = true
	}
	if v, _ := flags.GetBool("verbose"); v {
		cfg.LogLevel = "debug"
	}
	return nil
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + key))
}

func envBool(key string, fallback bool) (bool, error) {
	v := getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return b, nil
}
