package sink

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/rs/zerolog"

	"github.com/law-makers/quotecrawl/pkg/models"
)

// Dumper persists the raw markup of visited pages in dump mode.
type Dumper struct {
	dir    string
	format models.DumpFormat
	logger zerolog.Logger
}

// NewDumper creates a Dumper writing into dir. An empty format means HTML.
func NewDumper(dir string, format models.DumpFormat, logger zerolog.Logger) *Dumper {
	if format == "" {
		format = models.DumpHTML
	}
	return &Dumper{
		dir:    dir,
		format: format,
		logger: logger,
	}
}

// Dump writes markup for pageURL into the dump directory, creating it if
// needed and replacing any previous file of the same name. It returns the
// path written.
func (d *Dumper) Dump(markup, pageURL string) (string, error) {
	if _, err := os.Stat(d.dir); errors.Is(err, fs.ErrNotExist) {
		d.logger.Info().Str("dir", d.dir).Msg("Creating dump directory")
	}
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create dump directory: %w", err)
	}

	content := markup
	ext := ".html"
	if d.format == models.DumpMarkdown {
		converted, err := toMarkdown(markup, pageURL)
		if err != nil {
			return "", fmt.Errorf("failed to convert page to markdown: %w", err)
		}
		content = converted
		ext = ".md"
	}

	path := filepath.Join(d.dir, DumpName(pageURL)+ext)
	d.logger.Info().Str("file", path).Str("url", pageURL).Msg("Saving page dump")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write dump: %w", err)
	}
	return path, nil
}

// DumpName derives a file stem from the last two path segments of pageURL
// joined by an underscore. Trailing slashes, the query and the fragment are
// ignored, so http://example.com/js/page/3/ gives "page_3". With fewer than two
// segments the host stands in for the missing ones.
func DumpName(pageURL string) string {
	host := ""
	path := pageURL
	if u, err := url.Parse(pageURL); err == nil {
		host = u.Host
		path = u.Path
	}

	var parts []string
	if host != "" {
		parts = append(parts, host)
	}
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	if len(parts) == 0 {
		return "index"
	}
	if len(parts) > 2 {
		parts = parts[len(parts)-2:]
	}
	return strings.Join(parts, "_")
}

func toMarkdown(markup, pageURL string) (string, error) {
	converter := md.NewConverter(md.DomainFromURL(pageURL), true, nil)
	converter.Use(plugin.GitHubFlavored())

	cleaned, err := cleanHTML(markup)
	if err != nil {
		return "", err
	}
	return converter.ConvertString(cleaned)
}
