package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultLimit is the number of review requests rendered per triage
// group when the document does not say otherwise.
const DefaultLimit = 5

// Config is the schedule document, loaded once per run and treated as
// immutable afterwards.
type Config struct {
	Start     time.Time
	Period    int
	Location  *time.Location
	Slots     map[int]Slot
	Recurring []RecurringLine
	Triage    TriageConfig
}

// Slot is one configured entry in the repeating period. A slot with no
// text renders no line of its own. Triage, when set, overrides the
// run-level triage default for this slot.
type Slot struct {
	Text   string `yaml:"text"`
	Offset int    `yaml:"offset"`
	Triage *bool  `yaml:"triage"`
}

// RecurringLine applies to every activated slot. An entry with Triage
// set carries the run-level triage default instead of (or in addition
// to) producing a line; the last such entry wins.
type RecurringLine struct {
	Text   string `yaml:"text"`
	Before bool   `yaml:"before"`
	Triage *bool  `yaml:"triage"`
}

// TriageConfig governs the review-queue section.
type TriageConfig struct {
	Org             string `yaml:"org"`
	OldPRThreshold  int    `yaml:"old_pr_threshold"`
	SprintThreshold int    `yaml:"sprint_threshold"`
	Limit           int    `yaml:"limit"`
	MergeLabel      string `yaml:"merge_label"`
	ReviewLabel     string `yaml:"review_label"`
	BlockedLabel    string `yaml:"blocked_label"`
}

// document is the raw YAML shape before validation.
type document struct {
	Start     string          `yaml:"start"`
	Period    int             `yaml:"period"`
	Timezone  string          `yaml:"timezone"`
	Messages  map[int]Slot    `yaml:"messages"`
	Recurring []RecurringLine `yaml:"recurring_messages"`
	Triage    TriageConfig    `yaml:"triage"`
}

// Load reads and validates a schedule document from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse validates a schedule document. All configuration errors are
// reported here, before any network activity.
func Parse(data []byte) (*Config, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schedule document: %w", err)
	}

	if doc.Start == "" {
		return nil, fmt.Errorf("schedule document: missing start date")
	}
	if doc.Period <= 0 {
		return nil, fmt.Errorf("schedule document: period must be positive, got %d", doc.Period)
	}

	tz := doc.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("schedule document: timezone %q: %w", tz, err)
	}

	start, err := time.ParseInLocation("2006-01-02", doc.Start, loc)
	if err != nil {
		return nil, fmt.Errorf("schedule document: start date %q: %w", doc.Start, err)
	}

	for k := range doc.Messages {
		if k < 0 || k >= doc.Period {
			return nil, fmt.Errorf("schedule document: slot key %d outside [0, %d)", k, doc.Period)
		}
	}

	tri := doc.Triage
	if tri.OldPRThreshold < 0 || tri.SprintThreshold < 0 {
		return nil, fmt.Errorf("schedule document: triage thresholds must be non-negative")
	}
	if tri.Limit <= 0 {
		tri.Limit = DefaultLimit
	}
	if tri.MergeLabel == "" {
		tri.MergeLabel = "mergeit"
	}
	if tri.ReviewLabel == "" {
		tri.ReviewLabel = "please-review"
	}
	if tri.BlockedLabel == "" {
		tri.BlockedLabel = "blocked"
	}

	return &Config{
		Start:     start,
		Period:    doc.Period,
		Location:  loc,
		Slots:     doc.Messages,
		Recurring: doc.Recurring,
		Triage:    tri,
	}, nil
}
