package config

import (
	"fmt"

	urlutil "github.com/law-makers/quotecrawl/internal/utils/url"
	"github.com/law-makers/quotecrawl/pkg/models"
)

func validate(c *Config) error {
	if err := urlutil.ValidateURL(c.StartURL); err != nil {
		return fmt.Errorf("start url: %w", err)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("output path must not be empty")
	}
	switch c.Engine {
	case models.EngineBrowser, models.EngineStatic:
	default:
		return fmt.Errorf("unknown engine %q (want %q or %q)", c.Engine, models.EngineBrowser, models.EngineStatic)
	}
	switch c.DumpFormat {
	case models.DumpHTML, models.DumpMarkdown:
	default:
		return fmt.Errorf("unknown dump format %q (want %q or %q)", c.DumpFormat, models.DumpHTML, models.DumpMarkdown)
	}
	if c.Dump && c.DumpDir == "" {
		return fmt.Errorf("dump directory must not be empty when dump mode is on")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0")
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("max pages must be >= 0")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}
