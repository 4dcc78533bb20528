package runner

import (
	"encoding/json"

	"github.com/spectral-sh/specrun/types"
)

// Event actions emitted by the worker binary, one JSON object per line.
const (
	ActionRun      = "run"
	ActionPass     = "pass"
	ActionFail     = "fail"
	ActionSkip     = "skip"
	ActionPending  = "pending"
	ActionSummary  = "summary"
	ActionCoverage = "coverage"
)

// TestEvent is a single event from the worker's JSON output stream.
type TestEvent struct {
	Version int     `json:"version"`
	Action  string  `json:"action"`
	Test    string  `json:"test,omitempty"`
	Message string  `json:"message,omitempty"`
	Trace   string  `json:"trace,omitempty"`
	Elapsed float64 `json:"elapsed,omitempty"`

	// Summary fields, present only on ActionSummary events.
	Total   int `json:"total,omitempty"`
	Passed  int `json:"passed,omitempty"`
	Failed  int `json:"failed,omitempty"`
	Skipped int `json:"skipped,omitempty"`
	Pending int `json:"pending,omitempty"`

	// Coverage payload, present only on ActionCoverage events.
	Files types.CoverageMap `json:"files,omitempty"`
}

// parseTestEvent decodes one output line into a TestEvent.
func parseTestEvent(line []byte) (TestEvent, error) {
	var event TestEvent
	err := json.Unmarshal(line, &event)
	return event, err
}

// summaryConsistent reports whether a summary event satisfies the counter
// invariant total == passed+failed+skipped+pending with no negatives.
func summaryConsistent(e TestEvent) bool {
	if e.Total < 0 || e.Passed < 0 || e.Failed < 0 || e.Skipped < 0 || e.Pending < 0 {
		return false
	}
	return e.Total == e.Passed+e.Failed+e.Skipped+e.Pending
}
