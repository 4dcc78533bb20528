package types

// TestFileTask identifies one test file to be executed in its own worker
// process. Tasks are immutable values; the scheduler consumes each task
// exactly once, in the order the caller supplied them.
type TestFileTask struct {
	Path string
}

// NewTestFileTask creates a task for the given test file path.
func NewTestFileTask(path string) TestFileTask {
	return TestFileTask{Path: path}
}

// TasksFromPaths converts a list of file paths into tasks, preserving order.
func TasksFromPaths(paths []string) []TestFileTask {
	tasks := make([]TestFileTask, 0, len(paths))
	for _, p := range paths {
		tasks = append(tasks, TestFileTask{Path: p})
	}
	return tasks
}
