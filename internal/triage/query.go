package triage

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const browseBaseURL = "https://github.com/search"

// Query is a tracker search expression: space-joined filter terms that
// render both as the API query string and as a browsable search URL.
type Query struct {
	terms []string
}

func newQuery(org string) Query {
	return Query{terms: []string{
		"is:open",
		"is:pr",
		"archived:false",
		"draft:false",
		"org:" + org,
		"-author:app/dependabot",
	}}
}

func (q Query) with(terms ...string) Query {
	return Query{terms: append(append([]string(nil), q.terms...), terms...)}
}

func (q Query) String() string {
	return strings.Join(q.terms, " ")
}

// BrowseURL renders the query as a live search link for the posted
// message.
func (q Query) BrowseURL() string {
	return browseBaseURL + "?q=" + url.QueryEscape(q.String())
}

// isoWeekday returns Monday=1 .. Sunday=7.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// effectiveAge widens a raw day threshold past the immediately
// preceding weekend: an item last touched on Friday must not count the
// idle Saturday and Sunday toward its age.
func effectiveAge(today time.Time, minAge int) int {
	if minAge >= isoWeekday(today) {
		return minAge + 2
	}
	return minAge
}

// cutoff returns the calendar day minAge business-adjusted days before
// today, in the tracker's date format.
func cutoff(today time.Time, minAge int) string {
	return today.AddDate(0, 0, -effectiveAge(today, minAge)).Format("2006-01-02")
}

// idleQuery matches items untouched for at least the idle threshold,
// excluding explicitly blocked ones. The boundary day itself counts as
// idle.
func (a *Aggregator) idleQuery(today time.Time) Query {
	return newQuery(a.cfg.Org).with(
		"-label:"+a.cfg.BlockedLabel,
		"updated:<="+cutoff(today, a.cfg.OldPRThreshold),
	)
}

// sprintQuery matches labeled items inside the rolling sprint window.
func (a *Aggregator) sprintQuery(today time.Time, label string) Query {
	window := fmt.Sprintf("updated:%s..%s",
		cutoff(today, a.cfg.SprintThreshold),
		cutoff(today, a.cfg.OldPRThreshold),
	)
	return newQuery(a.cfg.Org).with("label:"+label, window)
}
