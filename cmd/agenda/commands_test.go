package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hochfrequenz/agenda/internal/config"
	"github.com/hochfrequenz/agenda/internal/triage"
)

type stubSearcher struct {
	batch triage.IssueBatch
	err   error
	calls int
}

func (s *stubSearcher) Search(ctx context.Context, query string, limit int) (triage.IssueBatch, error) {
	s.calls++
	return s.batch, s.err
}

func day(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

const testConf = `
period: 21
start: 2020-02-21
messages:
  0:
    text: "- Planning"
    offset: 3
  3:
    text: "- Grooming"
    offset: 1
recurring_messages:
  - text: "Daily note on %Y-%m-%d"
  - text: "# %Y-%m-%d"
    before: true
`

const testConfTriage = testConf + `
triage:
  org: acme
  old_pr_threshold: 2
  sprint_threshold: 14
`

func TestComposeMessage_EndToEnd(t *testing.T) {
	cfg, err := config.Parse([]byte(testConf))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tests := []struct {
		today string
		want  string
		ok    bool
	}{
		{"2020-02-21", "# 2020-02-24\n- Planning\nDaily note on 2020-02-24", true},
		{"2020-02-22", "", false},
		{"2020-02-24", "# 2020-02-25\n- Grooming\nDaily note on 2020-02-25", true},
	}

	for _, tt := range tests {
		s := &stubSearcher{}
		msg, ok, err := composeMessage(context.Background(), cfg, s, day(tt.today))
		if err != nil {
			t.Fatalf("composeMessage(%s) error = %v", tt.today, err)
		}
		if ok != tt.ok {
			t.Errorf("composeMessage(%s) ok = %v, want %v", tt.today, ok, tt.ok)
			continue
		}
		if msg != tt.want {
			t.Errorf("composeMessage(%s) = %q, want %q", tt.today, msg, tt.want)
		}
		if s.calls != 0 {
			t.Errorf("composeMessage(%s) hit the tracker %d times with triage unconfigured", tt.today, s.calls)
		}
	}
}

func TestComposeMessage_TriageAppended(t *testing.T) {
	cfg, err := config.Parse([]byte(testConfTriage))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	s := &stubSearcher{batch: triage.IssueBatch{
		Items: []triage.IssueRef{{
			Repo:    "widgets",
			Number:  41,
			Title:   "Fix flaky migration",
			URL:     "https://github.com/acme/widgets/pull/41",
			Updated: day("2020-02-10"),
		}},
		Total: 1,
	}}

	msg, ok, err := composeMessage(context.Background(), cfg, s, day("2020-02-21"))
	if err != nil {
		t.Fatalf("composeMessage() error = %v", err)
	}
	if !ok {
		t.Fatal("composeMessage() ok = false")
	}
	if s.calls != 3 {
		t.Errorf("tracker calls = %d, want 3", s.calls)
	}
	if !strings.HasPrefix(msg, "# 2020-02-24\n- Planning\nDaily note on 2020-02-24\n") {
		t.Errorf("message prefix wrong: %q", msg)
	}
	if !strings.Contains(msg, "widgets#41") {
		t.Errorf("message missing triage item: %q", msg)
	}
}

func TestComposeMessage_TrackerFailureAborts(t *testing.T) {
	cfg, err := config.Parse([]byte(testConfTriage))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	s := &stubSearcher{err: errors.New("tracker down")}
	msg, ok, err := composeMessage(context.Background(), cfg, s, day("2020-02-21"))
	if err == nil {
		t.Fatal("composeMessage() expected error when the tracker fails")
	}
	if ok || msg != "" {
		t.Errorf("composeMessage() = (%q, %v), want no partial message", msg, ok)
	}
}

func TestComposeMessage_InactiveDaySkipsTracker(t *testing.T) {
	cfg, err := config.Parse([]byte(testConfTriage))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	s := &stubSearcher{err: errors.New("tracker down")}
	_, ok, err := composeMessage(context.Background(), cfg, s, day("2020-02-22"))
	if err != nil {
		t.Fatalf("composeMessage() error = %v, inactive day must not touch the tracker", err)
	}
	if ok {
		t.Error("composeMessage() ok = true, want absent")
	}
	if s.calls != 0 {
		t.Errorf("tracker calls = %d, want 0", s.calls)
	}
}

func TestResolveToday(t *testing.T) {
	cfg, err := config.Parse([]byte(testConf))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	todayFlag = "2020-02-21"
	defer func() { todayFlag = "" }()

	got, err := resolveToday(cfg)
	if err != nil {
		t.Fatalf("resolveToday() error = %v", err)
	}
	if !got.Equal(day("2020-02-21")) {
		t.Errorf("resolveToday() = %v, want 2020-02-21", got)
	}

	todayFlag = "not-a-date"
	if _, err := resolveToday(cfg); err == nil {
		t.Error("resolveToday() expected error for bad --today")
	}
}
