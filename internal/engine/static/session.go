// Package static implements a page session over plain HTTP with colly, for
// listings whose markup needs no JavaScript to render.
package static

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog"

	"github.com/law-makers/quotecrawl/internal/engine"
	urlutil "github.com/law-makers/quotecrawl/internal/utils/url"
	"github.com/law-makers/quotecrawl/pkg/models"
)

// Options configures the HTTP session
type Options struct {
	UserAgent string
	Headers   map[string]string
	Proxy     string
	Timeout   time.Duration
	// Transport replaces the default HTTP transport when set.
	Transport http.RoundTripper
}

// Session fetches pages synchronously with a colly collector and keeps the
// last response as the current page.
type Session struct {
	opts      Options
	logger    zerolog.Logger
	collector *colly.Collector
	current   *models.PageSnapshot
	stopOnce  sync.Once
	stopped   bool
}

// New creates a static session
func New(opts Options, logger zerolog.Logger) *Session {
	return &Session{
		opts:   opts,
		logger: logger.With().Str("session", "static").Logger(),
	}
}

// Name returns the name of this session
func (s *Session) Name() string {
	return "StaticSession"
}

// Start builds the collector and fetches startURL
func (s *Session) Start(ctx context.Context, startURL string) error {
	if s.stopped {
		return engine.ErrSessionClosed
	}
	if s.collector != nil {
		return engine.NewEngineError(engine.ErrCodeSession, "session already started", nil)
	}

	c := colly.NewCollector(
		colly.UserAgent(s.opts.UserAgent),
		colly.AllowURLRevisit(),
	)
	if s.opts.Timeout > 0 {
		c.SetRequestTimeout(s.opts.Timeout)
	}
	if s.opts.Transport != nil {
		c.WithTransport(s.opts.Transport)
	}
	if s.opts.Proxy != "" {
		if err := c.SetProxy(s.opts.Proxy); err != nil {
			return engine.NewEngineError(engine.ErrCodeLaunch, "invalid proxy", err)
		}
	}

	c.OnRequest(func(r *colly.Request) {
		for key, value := range s.opts.Headers {
			r.Headers.Set(key, value)
		}
	})
	c.OnResponse(func(r *colly.Response) {
		s.current = &models.PageSnapshot{
			URL:  r.Request.URL.String(),
			HTML: string(r.Body),
		}
	})

	s.collector = c
	return s.visit(ctx, startURL)
}

// Snapshot returns the last fetched page
func (s *Session) Snapshot(ctx context.Context) (*models.PageSnapshot, error) {
	if s.collector == nil || s.current == nil {
		return nil, engine.ErrNotStarted
	}
	snap := *s.current
	return &snap, nil
}

// AdvanceToNextPage follows the href of the link labelled with the next
// page marker, resolved against the current URL.
func (s *Session) AdvanceToNextPage(ctx context.Context) (engine.Advance, error) {
	if s.collector == nil || s.current == nil {
		return engine.NoMorePages, engine.ErrNotStarted
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s.current.HTML))
	if err != nil {
		return engine.NoMorePages, engine.NewEngineError(engine.ErrCodeParse, "failed to parse current page", err)
	}

	link := doc.Find("a").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return normalizeSpace(sel.Text()) == engine.NextPageLabel
	}).First()
	if link.Length() == 0 {
		return engine.NoMorePages, nil
	}

	href, ok := link.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return engine.NoMorePages, engine.NewEngineError(engine.ErrCodeNavigation, "cannot follow next page control", engine.ErrNoTarget).
			WithDetail("url", s.current.URL)
	}

	if err := s.visit(ctx, urlutil.ResolveURL(s.current.URL, href)); err != nil {
		return engine.NoMorePages, err
	}
	return engine.Advanced, nil
}

// Stop releases the collector. Subsequent calls are no-ops.
func (s *Session) Stop() error {
	s.stopOnce.Do(func() {
		s.stopped = true
		s.collector = nil
		s.current = nil
	})
	return nil
}

func (s *Session) visit(ctx context.Context, target string) error {
	if err := ctx.Err(); err != nil {
		return engine.NewEngineError(engine.ErrCodeNavigation, "crawl cancelled", err)
	}

	start := time.Now()
	s.current = nil
	if err := s.collector.Visit(target); err != nil {
		return engine.NewEngineError(engine.ErrCodeNavigation, "failed to load page", err).
			WithDetail("url", target)
	}
	if s.current == nil {
		return engine.NewEngineError(engine.ErrCodeNavigation, "no response received", fmt.Errorf("GET %s", target)).
			WithDetail("url", target)
	}

	s.logger.Debug().Str("url", target).Dur("elapsed", time.Since(start)).Msg("Page fetched")
	return nil
}

// normalizeSpace trims and collapses whitespace runs, like XPath normalize-space
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var _ engine.Session = (*Session)(nil)
