// Package sink accumulates quote records over a crawl and persists them,
// together with the optional raw page dumps.
package sink

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/law-makers/quotecrawl/pkg/models"
)

// jsonIndent matches the four-space indentation of the published quotes.json
const jsonIndent = "    "

// tagSeparator joins tags inside a single CSV cell
const tagSeparator = ";"

// Collection is the ordered, append-only set of records of one crawl.
// It is owned by the crawl loop and not safe for concurrent use.
type Collection struct {
	records []models.Quote
	logger  zerolog.Logger
}

// NewCollection creates an empty collection
func NewCollection(logger zerolog.Logger) *Collection {
	return &Collection{
		records: []models.Quote{},
		logger:  logger,
	}
}

// Append extends the collection, preserving order.
func (c *Collection) Append(records ...models.Quote) {
	c.records = append(c.records, records...)
}

// Records returns the records collected so far.
func (c *Collection) Records() []models.Quote {
	return c.records
}

// Len returns the number of records collected so far.
func (c *Collection) Len() int {
	return len(c.records)
}

// Flush writes the full collection to path, replacing any existing file.
// A ".csv" extension selects CSV; anything else is written as indented JSON.
func (c *Collection) Flush(path string) error {
	var (
		content []byte
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		content, err = EncodeCSV(c.records)
	default:
		content, err = EncodeJSON(c.records)
	}
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	c.logger.Info().Str("file", path).Int("quotes", len(c.records)).Msg("Saving results")
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// EncodeJSON renders records as an indented JSON array. HTML characters and
// non-ASCII text are kept literal.
func EncodeJSON(records []models.Quote) ([]byte, error) {
	if records == nil {
		records = []models.Quote{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", jsonIndent)
	if err := enc.Encode(normalize(records)); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// EncodeCSV renders records as CSV with a quote,author,tags header.
func EncodeCSV(records []models.Quote) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"quote", "author", "tags"}); err != nil {
		return nil, err
	}
	for _, r := range records {
		if err := writer.Write([]string{r.Quote, r.Author, strings.Join(r.Tags, tagSeparator)}); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// normalize makes sure tags are encoded as [] rather than null
func normalize(records []models.Quote) []models.Quote {
	out := make([]models.Quote, len(records))
	for i, r := range records {
		if r.Tags == nil {
			r.Tags = []string{}
		}
		out[i] = r
	}
	return out
}
