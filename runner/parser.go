package runner

import (
	"bufio"
	"bytes"

	"github.com/acarl005/stripansi"

	"github.com/spectral-sh/specrun/types"
)

// OutputParser turns a worker's raw output stream into counters, error
// records and an optional coverage map. Parsing must never fail hard:
// malformed lines are skipped and fully unparseable output degrades to
// zero counters with the raw output preserved for inspection.
type OutputParser interface {
	Parse(output []byte) *WorkerResult
}

// outputParser implements OutputParser for the v1 JSON event protocol.
type outputParser struct{}

// NewOutputParser creates a parser for the worker event protocol.
func NewOutputParser() OutputParser {
	return &outputParser{}
}

// Parse scans the output line by line. Lines are stripped of ANSI escape
// sequences before decoding since runner binaries routinely colorize
// output even in machine mode. A trailing summary event is authoritative
// for the counters when it satisfies the counter invariant; otherwise the
// per-test events are counted directly.
func (p *outputParser) Parse(output []byte) *WorkerResult {
	result := &WorkerResult{
		Coverage: make(types.CoverageMap),
	}

	var summary *TestEvent

	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := []byte(stripansi.Strip(string(bytes.TrimSpace(scanner.Bytes()))))
		if len(line) == 0 || line[0] != '{' {
			continue
		}

		event, err := parseTestEvent(line)
		if err != nil {
			continue
		}
		if event.Version != ProtocolVersion {
			continue
		}

		switch event.Action {
		case ActionPass:
			result.Passed++
		case ActionFail:
			result.Failed++
			result.Errors = append(result.Errors, types.TestError{
				Message: failureMessage(event),
				Trace:   event.Trace,
			})
		case ActionSkip:
			result.Skipped++
		case ActionPending:
			result.Pending++
		case ActionSummary:
			e := event
			summary = &e
		case ActionCoverage:
			result.Coverage.Merge(event.Files)
		}
	}

	if summary != nil && summaryConsistent(*summary) {
		result.Total = summary.Total
		result.Passed = summary.Passed
		result.Failed = summary.Failed
		result.Skipped = summary.Skipped
		result.Pending = summary.Pending
	} else {
		result.Total = result.Passed + result.Failed + result.Skipped + result.Pending
	}

	return result
}

// failureMessage picks a readable message for a fail event.
func failureMessage(event TestEvent) string {
	if event.Message != "" {
		return event.Message
	}
	if event.Test != "" {
		return event.Test + " failed"
	}
	return "test failed"
}
