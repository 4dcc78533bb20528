// Package exitcodes defines the standard exit codes used by specrun.
package exitcodes

// Exit code constants used by specrun
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when all test files pass
// * TestFailure (1): Used when one or more test files fail or time out
// * RuntimeErr (2): Used for runtime errors such as bad configuration or panics
const (
	Success     = 0 // All tests pass
	TestFailure = 1 // Test failures
	RuntimeErr  = 2 // Runtime errors
)
