package types

// TestError is one failure record extracted from a worker's output, or
// synthesized by the orchestrator for launch failures and timeouts.
type TestError struct {
	Message string
	Trace   string
}

// FileError is a TestError annotated with the test file it originated
// from, as stored in the aggregate report.
type FileError struct {
	File    string
	Message string
	Trace   string
}
