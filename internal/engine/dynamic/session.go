// internal/engine/dynamic/session.go
package dynamic

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/law-makers/quotecrawl/internal/engine"
	"github.com/law-makers/quotecrawl/pkg/models"
)

// nextPageXPath matches links whose visible text is the next page label
const nextPageXPath = `//a[normalize-space(.)="` + engine.NextPageLabel + `"]`

// Options configures the browser session
type Options struct {
	Headless     bool
	UserAgent    string
	WindowWidth  int
	WindowHeight int
	ChromePath   string
	Proxy        string
	Headers      map[string]string
	// Timeout bounds each browser operation. Zero means no limit.
	Timeout time.Duration
}

// Session drives a single headless Chrome tab with chromedp.
type Session struct {
	opts   Options
	logger zerolog.Logger

	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	stopOnce      sync.Once
	stopped       bool
}

// New creates a browser session. Chrome is not launched until Start.
func New(opts Options, logger zerolog.Logger) *Session {
	if opts.WindowWidth <= 0 || opts.WindowHeight <= 0 {
		opts.WindowWidth, opts.WindowHeight = 1920, 1080
	}
	return &Session{
		opts:   opts,
		logger: logger.With().Str("session", "browser").Logger(),
	}
}

// Name returns the name of this session
func (s *Session) Name() string {
	return "BrowserSession"
}

// AllocatorOptions returns the exec allocator flags used to launch Chrome
func (s *Session) AllocatorOptions() []chromedp.ExecAllocatorOption {
	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(s.opts.WindowWidth, s.opts.WindowHeight),
	}

	if s.opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(s.opts.UserAgent))
	}

	if path := FindChrome(s.opts.ChromePath, s.logger); path != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(path)}, allocOpts...)
	}

	if s.opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}

	if s.opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(s.opts.Proxy))
	}

	return allocOpts
}

// Start launches Chrome and loads startURL. Cancelling ctx tears the browser
// down.
func (s *Session) Start(ctx context.Context, startURL string) error {
	if s.stopped {
		return engine.ErrSessionClosed
	}
	if s.browserCtx != nil {
		return engine.NewEngineError(engine.ErrCodeSession, "session already started", nil)
	}

	start := time.Now()
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, s.AllocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	s.allocCancel = allocCancel
	s.browserCtx = browserCtx
	s.browserCancel = browserCancel

	// The first Run allocates the browser and binds it to browserCtx.
	if err := chromedp.Run(browserCtx); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			err = fmt.Errorf("%w: %w", engine.ErrBrowserNotFound, err)
		}
		return engine.NewEngineError(engine.ErrCodeLaunch, "failed to launch browser", err)
	}
	s.logger.Debug().Dur("elapsed", time.Since(start)).Msg("Browser launched")

	if len(s.opts.Headers) > 0 {
		headers := network.Headers{}
		for k, v := range s.opts.Headers {
			headers[k] = v
		}
		if err := s.run(ctx, network.Enable(), network.SetExtraHTTPHeaders(headers)); err != nil {
			return engine.NewEngineError(engine.ErrCodeLaunch, "failed to set extra headers", err)
		}
	}

	if err := s.run(ctx, chromedp.Navigate(startURL), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return engine.NewEngineError(engine.ErrCodeNavigation, "failed to load start page", err).
			WithDetail("url", startURL)
	}

	s.logger.Debug().Str("url", startURL).Dur("elapsed", time.Since(start)).Msg("Start page loaded")
	return nil
}

// Snapshot returns the current location and the document's outer HTML
func (s *Session) Snapshot(ctx context.Context) (*models.PageSnapshot, error) {
	if s.browserCtx == nil {
		return nil, engine.ErrNotStarted
	}

	var snap models.PageSnapshot
	err := s.run(ctx,
		chromedp.Location(&snap.URL),
		chromedp.OuterHTML("html", &snap.HTML, chromedp.ByQuery),
	)
	if err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeSession, "failed to read page", err)
	}
	return &snap, nil
}

// AdvanceToNextPage clicks the next page link and waits for the new document.
func (s *Session) AdvanceToNextPage(ctx context.Context) (engine.Advance, error) {
	if s.browserCtx == nil {
		return engine.NoMorePages, engine.ErrNotStarted
	}

	var nodes []*cdp.Node
	// AtLeast(0) makes the query return at once instead of waiting for a match.
	if err := s.run(ctx, chromedp.Nodes(nextPageXPath, &nodes, chromedp.BySearch, chromedp.AtLeast(0))); err != nil {
		return engine.NoMorePages, engine.NewEngineError(engine.ErrCodeSession, "failed to search for next page control", err)
	}
	if len(nodes) == 0 {
		return engine.NoMorePages, nil
	}

	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	resp, err := chromedp.RunResponse(opCtx, chromedp.MouseClickNode(nodes[0]))
	if err != nil {
		return engine.NoMorePages, engine.NewEngineError(engine.ErrCodeNavigation, "failed to follow next page control", err)
	}
	if err := chromedp.Run(opCtx, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return engine.NoMorePages, engine.NewEngineError(engine.ErrCodeNavigation, "next page did not become ready", err)
	}

	if resp != nil {
		s.logger.Debug().Str("url", resp.URL).Int64("status", resp.Status).Msg("Next page loaded")
	}
	return engine.Advanced, nil
}

// Stop closes the browser. Subsequent calls are no-ops.
func (s *Session) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		s.stopped = true
		if s.browserCtx == nil {
			return
		}
		err = chromedp.Cancel(s.browserCtx)
		s.browserCancel()
		s.allocCancel()
		s.logger.Debug().Msg("Browser closed")
	})
	if err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	opCtx, cancel := s.opContext(ctx)
	defer cancel()
	return chromedp.Run(opCtx, actions...)
}

// opContext derives a per-operation context from the browser context that is
// also cancelled with ctx and bounded by the configured timeout.
func (s *Session) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	var (
		opCtx  context.Context
		cancel context.CancelFunc
	)
	if s.opts.Timeout > 0 {
		opCtx, cancel = context.WithTimeout(s.browserCtx, s.opts.Timeout)
	} else {
		opCtx, cancel = context.WithCancel(s.browserCtx)
	}
	stop := context.AfterFunc(ctx, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}
}

var _ engine.Session = (*Session)(nil)
