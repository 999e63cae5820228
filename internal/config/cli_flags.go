package config

import "github.com/spf13/cobra"

// RegisterFlags registers the crawler flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	f := cmd.Flags()
	f.String("start-url", DefaultStartURL, "First listing page to crawl")
	f.StringP("output", "o", DefaultOutputPath, "Results file (.json or .csv)")
	f.Bool("dump", DefaultDump, "Save each page's HTML to the dump directory")
	f.String("dump-dir", DefaultDumpDir, "Directory for page dumps")
	f.String("dump-format", DefaultDumpFormat, "Page dump format: html or markdown")
	f.String("engine", DefaultEngine, "Session engine: browser or static")
	f.Bool("headless", DefaultHeadless, "Run the browser without a visible window")
	f.String("user-agent", DefaultUserAgent, "User agent string sent by the session")
	f.String("proxy", "", "Set HTTP/SOCKS5 proxy (e.g., http://localhost:8080)")
	f.StringArrayP("header", "H", nil, "Extra request header (e.g., -H 'Accept-Language: en')")
	f.Duration("timeout", DefaultTimeout, "Per-operation timeout, 0 for none")
	f.Int("max-pages", DefaultMaxPages, "Stop after this many pages, 0 for no limit")
	f.Bool("stop-on-revisit", DefaultStopOnRevisit, "Stop when the next page was already parsed")
	f.String("log-file", DefaultLogFile, "Log file, truncated at the start of each run")
	f.String("metrics-file", "", "Write Prometheus metrics in text format to this file")
	f.String("env-file", DefaultEnvFile, "Optional .env file with QUOTES_* settings")

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Log to stderr in JSON format")
}
