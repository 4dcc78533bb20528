package specrun

import (
	"github.com/spectral-sh/specrun/types"
)

// getResultString returns a short string representing a file outcome
func getResultString(status types.TestStatus) string {
	switch status {
	case types.TestStatusPass:
		return "✓ pass"
	case types.TestStatusSkip:
		return "- skip"
	case types.TestStatusError:
		return "✗ timeout"
	default:
		return "✗ fail"
	}
}
