package engine

import (
	"context"

	"github.com/law-makers/quotecrawl/pkg/models"
)

// NextPageLabel is the visible text of the pagination control that loads the
// following page of the listing.
const NextPageLabel = "Next →"

// Advance is the outcome of looking for the next page control.
type Advance int

const (
	// NoMorePages means the current page has no next control. It is the normal
	// end of a crawl, not a failure.
	NoMorePages Advance = iota
	// Advanced means the control was found and activated; the session now
	// holds the next page.
	Advanced
)

// String returns the string representation of the advance result
func (a Advance) String() string {
	switch a {
	case Advanced:
		return "Advanced"
	case NoMorePages:
		return "NoMorePages"
	default:
		return "Unknown"
	}
}

// Session is a live page session: one per crawl, one page loaded at a time.
type Session interface {
	// Start opens the session and loads startURL.
	Start(ctx context.Context, startURL string) error

	// Snapshot returns the canonical URL and full markup of the current page.
	Snapshot(ctx context.Context) (*models.PageSnapshot, error)

	// AdvanceToNextPage activates the next page control if the current page
	// has one. A missing control is reported as NoMorePages with a nil error.
	AdvanceToNextPage(ctx context.Context) (Advance, error)

	// Stop releases the session. It is safe to call more than once.
	Stop() error

	// Name returns the name of the session implementation
	Name() string
}
