// Package triage builds the ranked review-queue section of the agenda
// message from live tracker queries.
package triage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/hochfrequenz/agenda/internal/config"
)

// Aggregator queries the tracker for the sprint and idle groups and
// renders them as message lines.
type Aggregator struct {
	searcher Searcher
	cfg      config.TriageConfig
}

// New creates an Aggregator backed by the given searcher.
func New(searcher Searcher, cfg config.TriageConfig) *Aggregator {
	return &Aggregator{searcher: searcher, cfg: cfg}
}

// Section runs the three tracker queries concurrently and renders the
// sprint group followed by the idle group. Any query failure aborts
// the whole section; no partial output is returned. Groups with zero
// matches render nothing.
func (a *Aggregator) Section(ctx context.Context, today time.Time) ([]string, error) {
	mergeQ := a.sprintQuery(today, a.cfg.MergeLabel)
	reviewQ := a.sprintQuery(today, a.cfg.ReviewLabel)
	idleQ := a.idleQuery(today)

	var mergeB, reviewB, idleB IssueBatch
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		mergeB, err = a.searcher.Search(ctx, mergeQ.String(), a.cfg.Limit)
		return err
	})
	g.Go(func() error {
		var err error
		reviewB, err = a.searcher.Search(ctx, reviewQ.String(), a.cfg.Limit)
		return err
	})
	g.Go(func() error {
		var err error
		idleB, err = a.searcher.Search(ctx, idleQ.String(), a.cfg.Limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("tracker query: %w", err)
	}

	sprint := mergeBatches(mergeB, reviewB)
	sortByStaleness(idleB.Items)

	// The sprint browse link shows the review label's search; both
	// sprint queries differ only in the label term.
	lines := renderGroup("Sprint PRs", sprint, reviewQ.BrowseURL(), a.cfg.Limit, today)
	lines = append(lines, renderGroup("Old PRs", idleB, idleQ.BrowseURL(), a.cfg.Limit, today)...)
	return lines, nil
}

// mergeBatches joins the two sprint label queries, dropping items that
// carry both labels. The combined total is the tracker totals less the
// duplicates actually observed.
func mergeBatches(a, b IssueBatch) IssueBatch {
	seen := make(map[string]bool, len(a.Items))
	items := append([]IssueRef(nil), a.Items...)
	for _, it := range a.Items {
		seen[itemKey(it)] = true
	}

	dupes := 0
	for _, it := range b.Items {
		if seen[itemKey(it)] {
			dupes++
			continue
		}
		items = append(items, it)
	}

	sortByStaleness(items)
	return IssueBatch{Items: items, Total: a.Total + b.Total - dupes}
}

func itemKey(it IssueRef) string {
	return fmt.Sprintf("%s#%d", it.Repo, it.Number)
}

// sortByStaleness orders oldest-updated first; urgency correlates with
// staleness. Ties break on repo and number so concurrent fetch order
// never shows through.
func sortByStaleness(items []IssueRef) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].Updated.Equal(items[j].Updated) {
			return items[i].Updated.Before(items[j].Updated)
		}
		if items[i].Repo != items[j].Repo {
			return items[i].Repo < items[j].Repo
		}
		return items[i].Number < items[j].Number
	})
}

// renderGroup renders one ranked group: a linked header, then at most
// limit item lines. The header count is the tracker-reported total and
// only appears when it exceeds what is shown.
func renderGroup(name string, b IssueBatch, browseURL string, limit int, now time.Time) []string {
	if b.Total == 0 && len(b.Items) == 0 {
		return nil
	}

	header := name
	if b.Total > limit {
		header = fmt.Sprintf("%d %s", b.Total, name)
	}

	items := b.Items
	if len(items) > limit {
		items = items[:limit]
	}

	lines := make([]string, 0, len(items)+1)
	lines = append(lines, fmt.Sprintf("*<%s|%s>*", browseURL, header))
	for _, it := range items {
		age := humanize.RelTime(it.Updated, now, "ago", "from now")
		lines = append(lines, fmt.Sprintf("• <%s|%s#%d> %s (%s)", it.URL, it.Repo, it.Number, it.Title, age))
	}
	return lines
}
