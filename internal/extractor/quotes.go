// Package extractor turns listing page markup into quote records.
package extractor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/law-makers/quotecrawl/pkg/models"
)

// Selectors of a quote entry on the listing pages
const (
	QuoteSelector = "div.quote"
	TagSelector   = "a.tag"
	textTag       = "span"
	authorTag     = "small"
)

// ErrMalformedQuote is returned when a quote container lacks its text or
// author element.
var ErrMalformedQuote = errors.New("malformed quote container")

// ExtractQuotes parses markup and returns one record per quote container, in
// document order. A page without containers yields an empty, non-nil slice.
func ExtractQuotes(markup string) ([]models.Quote, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	quotes := []models.Quote{}
	var extractErr error
	doc.Find(QuoteSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		q, err := parseQuote(s)
		if err != nil {
			extractErr = fmt.Errorf("quote %d: %w", i+1, err)
			return false
		}
		quotes = append(quotes, q)
		return true
	})
	if extractErr != nil {
		return nil, extractErr
	}

	return quotes, nil
}

// parseQuote reads the first descendant span as the text, the first
// descendant small as the author, and every a.tag as a tag label.
func parseQuote(s *goquery.Selection) (models.Quote, error) {
	text := s.Find(textTag).First()
	if text.Length() == 0 {
		return models.Quote{}, fmt.Errorf("%w: missing <%s> text element", ErrMalformedQuote, textTag)
	}
	author := s.Find(authorTag).First()
	if author.Length() == 0 {
		return models.Quote{}, fmt.Errorf("%w: missing <%s> author element", ErrMalformedQuote, authorTag)
	}

	tags := []string{}
	s.Find(TagSelector).Each(func(_ int, t *goquery.Selection) {
		tags = append(tags, t.Text())
	})

	// Text is kept verbatim, surrounding whitespace included.
	return models.Quote{
		Quote:  text.Text(),
		Author: author.Text(),
		Tags:   tags,
	}, nil
}
