package crawl

import (
	"context"
	"errors"

	"github.com/law-makers/quotecrawl/internal/engine"
	"github.com/law-makers/quotecrawl/pkg/models"
)

type fakePage struct {
	url  string
	html string
	next int // index of the page the next control leads to, -1 for none
}

// fakeSession walks an in-memory chain of pages
type fakeSession struct {
	pages      []fakePage
	current    int
	started    bool
	stopCalls  int
	startErr   error
	advanceErr map[int]error
	snapshots  int
}

func newFakeSession(pages ...fakePage) *fakeSession {
	return &fakeSession{pages: pages, current: -1, advanceErr: map[int]error{}}
}

func (f *fakeSession) Name() string { return "FakeSession" }

func (f *fakeSession) Start(ctx context.Context, startURL string) error {
	if f.startErr != nil {
		return f.startErr
	}
	for i, p := range f.pages {
		if p.url == startURL {
			f.current = i
			f.started = true
			return nil
		}
	}
	return engine.NewEngineError(engine.ErrCodeNavigation, "unknown url", errors.New(startURL))
}

func (f *fakeSession) Snapshot(ctx context.Context) (*models.PageSnapshot, error) {
	if !f.started {
		return nil, engine.ErrNotStarted
	}
	f.snapshots++
	p := f.pages[f.current]
	return &models.PageSnapshot{URL: p.url, HTML: p.html}, nil
}

func (f *fakeSession) AdvanceToNextPage(ctx context.Context) (engine.Advance, error) {
	if err, ok := f.advanceErr[f.current]; ok {
		return engine.NoMorePages, err
	}
	next := f.pages[f.current].next
	if next < 0 {
		return engine.NoMorePages, nil
	}
	f.current = next
	return engine.Advanced, nil
}

func (f *fakeSession) Stop() error {
	f.stopCalls++
	return nil
}
