package triage

import (
	"context"
	"time"
)

// IssueRef is one open review request as reported by the tracker,
// immutable for the run's lifetime.
type IssueRef struct {
	Repo    string
	Number  int
	Title   string
	URL     string
	Updated time.Time
}

// IssueBatch is an ordered set of fetched items plus the tracker's
// total match count, which may exceed len(Items) when the tracker
// capped the result page.
type IssueBatch struct {
	Items []IssueRef
	Total int
}

// Searcher runs a tracker search query, returning at most limit items.
// The aggregator depends on this interface only, so tests substitute a
// fake with no network involved.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) (IssueBatch, error)
}
