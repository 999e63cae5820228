package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/quotecrawl/internal/config"
	"github.com/law-makers/quotecrawl/internal/crawl"
	"github.com/law-makers/quotecrawl/internal/engine"
	"github.com/law-makers/quotecrawl/internal/reqctx"
	"github.com/law-makers/quotecrawl/pkg/models"
)

const (
	firstPage = `<html><body>
<div class="quote"><span class="text">A</span><span>by <small class="author">Author1</small></span>
<div class="tags"><a class="tag" href="/tag/x/">x</a></div></div>
<div class="quote"><span class="text">B</span><span>by <small class="author">Author2</small></span>
<div class="tags"><a class="tag" href="/tag/y/">y</a><a class="tag" href="/tag/z/">z</a></div></div>
<ul class="pager"><li class="next"><a href="/js/page/2/">Next <span aria-hidden="true">&rarr;</span></a></li></ul>
</body></html>`
	lastPage = `<html><body>
<div class="quote"><span class="text">C</span><span>by <small class="author">Author3</small></span>
<div class="tags"></div></div>
</body></html>`
)

func staticConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.StartURL = "http://quotes.test/js/"
	cfg.Engine = models.EngineStatic
	cfg.OutputPath = filepath.Join(dir, "quotes.json")
	cfg.DumpDir = filepath.Join(dir, "data_dumps")
	cfg.LogFile = filepath.Join(dir, "quotes_crawler.log")
	cfg.MetricsFile = filepath.Join(dir, "metrics.prom")
	cfg.Quiet = true
	return cfg
}

func mockSite() *httpmock.MockTransport {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "http://quotes.test/js/", httpmock.NewStringResponder(200, firstPage))
	transport.RegisterResponder("GET", "http://quotes.test/js/page/2/", httpmock.NewStringResponder(200, lastPage))
	return transport
}

func TestApplication_StaticCrawl(t *testing.T) {
	cfg := staticConfig(t)
	cfg.Dump = true

	ctx := reqctx.WithRunContext(context.Background())
	var stderr bytes.Buffer
	a, err := New(ctx, cfg, Options{Stderr: &stderr, Transport: mockSite()})
	require.NoError(t, err)

	result, err := a.Run(ctx)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, 3, result.Quotes)
	assert.Equal(t, crawl.StopNoNextPage, result.Reason)

	data, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"quote":"A","author":"Author1","tags":["x"]},{"quote":"B","author":"Author2","tags":["y","z"]},{"quote":"C","author":"Author3","tags":[]}]`,
		string(data))

	assert.FileExists(t, filepath.Join(cfg.DumpDir, "quotes.test_js.html"))
	assert.FileExists(t, filepath.Join(cfg.DumpDir, "page_2.html"))

	metricsText, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metricsText), "quotecrawl_pages_visited_total 2")

	logText, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(logText), "Crawl finished")
	assert.Contains(t, string(logText), reqctx.GetRunContext(ctx).RunID)

	// Info lines stay out of the quiet console.
	assert.NotContains(t, stderr.String(), "Crawl finished")
}

func TestApplication_FailureCarriesRunID(t *testing.T) {
	cfg := staticConfig(t)
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "http://quotes.test/js/", httpmock.NewStringResponder(503, "unavailable"))

	ctx := reqctx.WithRunContext(context.Background())
	a, err := New(ctx, cfg, Options{Stderr: &bytes.Buffer{}, Transport: transport})
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Run(ctx)
	require.Error(t, err)

	var runErr *reqctx.RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, reqctx.GetRunContext(ctx).RunID, runErr.RunID)
	assert.Equal(t, engine.ErrCodeNavigation, engine.CodeOf(err))
	assert.NoFileExists(t, cfg.OutputPath)
}

func TestApplication_LogFileIsTruncated(t *testing.T) {
	cfg := staticConfig(t)
	require.NoError(t, os.WriteFile(cfg.LogFile, []byte("stale line from a previous run\n"), 0o644))

	a, err := New(context.Background(), cfg, Options{Stderr: &bytes.Buffer{}, Transport: mockSite()})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	logText, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.NotContains(t, string(logText), "stale line")
}

func TestNewLogger_Levels(t *testing.T) {
	var console, file bytes.Buffer
	cfg := config.Default()

	logger := NewLogger(cfg, &console, &file)
	logger.Info().Msg("page parsed")
	logger.Error().Msg("crawl aborted")

	assert.NotContains(t, console.String(), "page parsed")
	assert.Contains(t, console.String(), "crawl aborted")
	assert.Contains(t, file.String(), "page parsed")
	assert.Contains(t, file.String(), "crawl aborted")

	console.Reset()
	file.Reset()
	cfg.LogLevel = "debug"
	cfg.JSONLog = true
	logger = NewLogger(cfg, &console, &file)
	logger.Debug().Msg("browser launched")

	assert.True(t, strings.HasPrefix(console.String(), "{"))
	assert.Contains(t, console.String(), "browser launched")
	assert.Contains(t, file.String(), "browser launched")
}

func TestNewSession_SelectsEngine(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "BrowserSession", NewSession(cfg, nil, testLogger()).Name())

	cfg.Engine = models.EngineStatic
	assert.Equal(t, "StaticSession", NewSession(cfg, nil, testLogger()).Name())
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
