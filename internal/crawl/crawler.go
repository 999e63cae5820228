// Package crawl runs the page loop: snapshot, extract, append, dump, advance,
// until the listing has no next page, then writes the results.
package crawl

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/law-makers/quotecrawl/internal/engine"
	"github.com/law-makers/quotecrawl/internal/extractor"
	"github.com/law-makers/quotecrawl/internal/metrics"
	"github.com/law-makers/quotecrawl/internal/sink"
	urlutil "github.com/law-makers/quotecrawl/internal/utils/url"
)

// Progress reports pages as they are crawled
type Progress interface {
	Add(num int) error
	Finish() error
}

// StopReason tells why the loop left the fetching state
type StopReason string

const (
	StopNoNextPage StopReason = "no_next_page"
	StopRevisit    StopReason = "revisit"
	StopMaxPages   StopReason = "max_pages"
)

type state int

const (
	stateFetching state = iota
	stateDone
)

// Options configures a crawl run
type Options struct {
	StartURL   string
	OutputPath string
	// MaxPages stops the crawl after that many pages. Zero means no limit.
	MaxPages int
	// StopOnRevisit ends the crawl when the next link leads to a page that
	// was already parsed in this run.
	StopOnRevisit bool

	// Dumper enables dump mode when non-nil.
	Dumper   *sink.Dumper
	Metrics  *metrics.Metrics
	Progress Progress
}

// Result summarizes a finished crawl
type Result struct {
	Pages    int
	Quotes   int
	Output   string
	Dumps    []string
	Reason   StopReason
	Duration time.Duration
}

// Crawler owns one session and one result collection for a single run.
type Crawler struct {
	session    engine.Session
	collection *sink.Collection
	opts       Options
	logger     zerolog.Logger
}

// New creates a Crawler
func New(session engine.Session, collection *sink.Collection, opts Options, logger zerolog.Logger) *Crawler {
	return &Crawler{
		session:    session,
		collection: collection,
		opts:       opts,
		logger:     logger,
	}
}

// Run crawls from the start URL until no next page is found and flushes the
// collection to the output path. The session is stopped on every return path.
// On error nothing is written.
func (c *Crawler) Run(ctx context.Context) (result *Result, err error) {
	start := time.Now()

	defer func() {
		if stopErr := c.session.Stop(); stopErr != nil {
			c.logger.Warn().Err(stopErr).Msg("Failed to release session")
		}
		if c.opts.Progress != nil {
			if perr := c.opts.Progress.Finish(); perr != nil {
				c.logger.Debug().Err(perr).Msg("Failed to finish progress")
			}
		}
		c.opts.Metrics.SetRunDuration(time.Since(start))
		if err != nil {
			c.opts.Metrics.IncError(string(engine.CodeOf(err)))
			c.logger.Error().Err(err).Msg("Crawl aborted")
		}
	}()

	if c.opts.StartURL == "" || c.opts.OutputPath == "" {
		return nil, engine.NewEngineError(engine.ErrCodeValidation, "start url and output path are required", nil)
	}

	c.logger.Info().
		Str("session", c.session.Name()).
		Str("url", c.opts.StartURL).
		Msg("Starting crawl")

	if err := c.session.Start(ctx, c.opts.StartURL); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	result = &Result{Output: c.opts.OutputPath}
	visited := make(map[string]struct{})

	for st := stateFetching; st == stateFetching; {
		pageStart := time.Now()

		snap, err := c.session.Snapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read current page: %w", err)
		}

		if c.opts.StopOnRevisit {
			key := urlutil.Canonical(snap.URL)
			if _, seen := visited[key]; seen {
				c.logger.Warn().Str("url", snap.URL).Msg("Next page was already visited, stopping")
				result.Reason = StopRevisit
				break
			}
			visited[key] = struct{}{}
		}

		c.logger.Info().Str("url", snap.URL).Msg("Parsing quotes")
		quotes, err := extractor.ExtractQuotes(snap.HTML)
		if err != nil {
			return nil, engine.NewEngineError(engine.ErrCodeParse, "failed to extract quotes", err).
				WithDetail("url", snap.URL)
		}
		if len(quotes) == 0 {
			c.logger.Warn().Str("url", snap.URL).Msg("No quote containers found on page")
		}
		c.collection.Append(quotes...)

		if c.opts.Dumper != nil {
			path, err := c.opts.Dumper.Dump(snap.HTML, snap.URL)
			if err != nil {
				return nil, engine.NewEngineError(engine.ErrCodeIO, "failed to dump page", err).
					WithDetail("url", snap.URL)
			}
			result.Dumps = append(result.Dumps, path)
			c.opts.Metrics.IncDump()
		}

		result.Pages++
		if c.opts.Progress != nil {
			if perr := c.opts.Progress.Add(1); perr != nil {
				c.logger.Debug().Err(perr).Msg("Failed to update progress")
			}
		}
		c.logger.Debug().
			Str("url", snap.URL).
			Int("quotes", len(quotes)).
			Int("page", result.Pages).
			Msg("Page parsed")

		if c.opts.MaxPages > 0 && result.Pages >= c.opts.MaxPages {
			c.opts.Metrics.ObservePage(len(quotes), time.Since(pageStart))
			c.logger.Info().Int("max_pages", c.opts.MaxPages).Msg("Page limit reached")
			result.Reason = StopMaxPages
			break
		}

		adv, err := c.session.AdvanceToNextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to advance to next page: %w", err)
		}
		c.opts.Metrics.ObservePage(len(quotes), time.Since(pageStart))

		if adv == engine.NoMorePages {
			c.logger.Info().Msg("Next element not found, finishing")
			result.Reason = StopNoNextPage
			st = stateDone
		}
	}

	if err := c.collection.Flush(c.opts.OutputPath); err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeIO, "failed to save results", err).
			WithDetail("path", c.opts.OutputPath)
	}

	result.Quotes = c.collection.Len()
	result.Duration = time.Since(start)

	c.logger.Info().
		Int("pages", result.Pages).
		Int("quotes", result.Quotes).
		Str("reason", string(result.Reason)).
		Dur("duration", result.Duration).
		Msg("Crawl finished")

	return result, nil
}
