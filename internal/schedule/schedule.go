// Package schedule maps calendar days onto the repeating agenda period
// and assembles the message for the active slot.
package schedule

import (
	"math"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/hochfrequenz/agenda/internal/config"
)

// Midnight normalizes t to the start of its calendar day in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// daysBetween counts calendar days from start to today. Rounding keeps
// DST transitions from shifting the count by a day.
func daysBetween(start, today time.Time, loc *time.Location) int {
	delta := Midnight(today, loc).Sub(Midnight(start, loc))
	return int(math.Round(delta.Hours() / 24))
}

// Evaluate maps today onto the schedule's repeating period and returns
// the active slot plus the reference date (today shifted by the slot's
// offset). ok is false when today's cycle offset has no configured
// slot, which means no message is sent.
func Evaluate(cfg *config.Config, today time.Time) (config.Slot, time.Time, bool) {
	idx := daysBetween(cfg.Start, today, cfg.Location) % cfg.Period
	if idx < 0 {
		idx += cfg.Period
	}
	slot, ok := cfg.Slots[idx]
	if !ok {
		return config.Slot{}, time.Time{}, false
	}
	ref := Midnight(today, cfg.Location).AddDate(0, 0, slot.Offset)
	return slot, ref, true
}

// Render substitutes strftime-style directives in a template with
// fields of the reference date. Directives the formatter does not know
// pass through as literal text.
func Render(template string, ref time.Time) string {
	return strftime.Format(template, ref)
}

// TriageEnabled decides whether the review-queue section runs for the
// active slot. Requires a configured tracker organization; a recurring
// entry may set the run-level default (last one wins) and an explicit
// slot value overrides it.
func TriageEnabled(cfg *config.Config, slot config.Slot) bool {
	if cfg.Triage.Org == "" {
		return false
	}
	enabled := true
	for _, r := range cfg.Recurring {
		if r.Triage != nil {
			enabled = *r.Triage
		}
	}
	if slot.Triage != nil {
		enabled = *slot.Triage
	}
	return enabled
}

// Compose assembles the final message: recurring before-lines, the
// slot's own line, recurring after-lines, then the triage section.
// ok is false when no component produced a line, meaning there is
// nothing to send.
func Compose(cfg *config.Config, slot config.Slot, ref time.Time, triage []string) (string, bool) {
	var before, after []string
	for _, r := range cfg.Recurring {
		if r.Text == "" {
			continue
		}
		line := Render(r.Text, ref)
		if r.Before {
			before = append(before, line)
		} else {
			after = append(after, line)
		}
	}

	lines := make([]string, 0, len(before)+1+len(after)+len(triage))
	lines = append(lines, before...)
	if slot.Text != "" {
		lines = append(lines, Render(slot.Text, ref))
	}
	lines = append(lines, after...)
	lines = append(lines, triage...)

	if len(lines) == 0 {
		return "", false
	}
	return strings.Join(lines, "\n"), true
}
