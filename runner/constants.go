package runner

import "time"

// Worker execution constants.
const (
	// DefaultPerFileTimeout is applied when the caller does not configure one.
	DefaultPerFileTimeout = 10 * time.Minute

	// Runner binary arguments. The line-oriented JSON event stream on
	// stdout is the only contract between specrun and the worker binary;
	// these flags request it and pass caller filters through.
	MachineOutputFlag = "--output=json"
	CoverageFlag      = "--coverage"
	TagFlag           = "--tags"
	FilterFlag        = "--filter"

	// ProtocolVersion is the event-stream version this orchestrator
	// understands. Events carrying a different version are ignored.
	ProtocolVersion = 1

	// MaxReasonableConcurrency caps auto-determined concurrency to avoid
	// resource exhaustion.
	MaxReasonableConcurrency = 32
)
