package models

// Quote is a single quote entry scraped from a listing page.
// Field order matters: it is the order of keys in the JSON output.
type Quote struct {
	Quote  string   `json:"quote"`
	Author string   `json:"author"`
	Tags   []string `json:"tags"`
}

// PageSnapshot is the canonical URL and full markup of the page currently
// loaded in a session. It is overwritten on every navigation.
type PageSnapshot struct {
	URL  string
	HTML string
}

// EngineKind selects the session implementation
type EngineKind string

const (
	EngineBrowser EngineKind = "browser"
	EngineStatic  EngineKind = "static"
)

// DumpFormat selects how visited pages are persisted in dump mode
type DumpFormat string

const (
	DumpHTML     DumpFormat = "html"
	DumpMarkdown DumpFormat = "markdown"
)
