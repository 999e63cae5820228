package config

import "time"

// Default constants for application configuration
const (
	DefaultStartURL      = "http://quotes.toscrape.com/js/"
	DefaultOutputPath    = "quotes.json"
	DefaultDump          = false
	DefaultDumpDir       = "data_dumps"
	DefaultDumpFormat    = "html"
	DefaultEngine        = "browser"
	DefaultHeadless      = true
	DefaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultTimeout       = time.Duration(0) // no limit
	DefaultMaxPages      = 0                // unbounded
	DefaultStopOnRevisit = true
	DefaultLogFile       = "quotes_crawler.log"
	DefaultLogLevel      = "error"
	DefaultJSONLog       = false
	DefaultEnvFile       = ".env"
	EnvPrefix            = "QUOTES_"
)
