package types

// TestStatus represents the possible outcomes of a single test case
// reported by the runner binary.
type TestStatus string

const (
	TestStatusPass    TestStatus = "pass"
	TestStatusFail    TestStatus = "fail"
	TestStatusSkip    TestStatus = "skip"
	TestStatusPending TestStatus = "pending"
	TestStatusError   TestStatus = "error"
)

// String implements fmt.Stringer.
func (s TestStatus) String() string {
	return string(s)
}
