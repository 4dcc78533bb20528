package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
)

const (
	summaryFileName   = "summary.log"
	workerFileSuffix  = ".out.log"
	truncationBanner  = "--- output truncated: oldest bytes dropped ---\n"
	runDirPermissions = 0o755
)

// FileLogger persists run artifacts under <baseDir>/<runID>/: one raw
// output file per worker plus a run summary. It exists for diagnostics
// only; nothing reads these files back.
type FileLogger struct {
	baseDir string
	runID   string
	runDir  string
	log     log.Logger
}

// NewFileLogger creates the run directory for the given run ID. An empty
// runID gets a fresh UUID so artifacts never collide across runs.
func NewFileLogger(baseDir string, runID string, logger log.Logger) (*FileLogger, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("log base directory is required")
	}
	if runID == "" {
		runID = uuid.New().String()
	}
	if logger == nil {
		logger = log.New()
	}

	runDir := filepath.Join(baseDir, runID)
	if err := os.MkdirAll(runDir, runDirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create run log directory %s: %w", runDir, err)
	}

	return &FileLogger{
		baseDir: baseDir,
		runID:   runID,
		runDir:  runDir,
		log:     logger.New("component", "file-logger"),
	}, nil
}

// GetRunID returns the run ID this logger writes under.
func (l *FileLogger) GetRunID() string {
	return l.runID
}

// RunDir returns the directory all artifacts of this run land in.
func (l *FileLogger) RunDir() string {
	return l.runDir
}

// LogWorkerOutput writes one worker's raw captured output. The file name
// is derived from the test file path; ANSI escapes are stripped so the
// logs stay grep-able.
func (l *FileLogger) LogWorkerOutput(testFile string, rawOutput string, truncated bool) error {
	name := sanitizeFilename(testFile) + workerFileSuffix
	path := filepath.Join(l.runDir, name)

	var b strings.Builder
	if truncated {
		b.WriteString(truncationBanner)
	}
	b.WriteString(stripANSIEscapeSequences(rawOutput))

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write worker output for %s: %w", testFile, err)
	}
	l.log.Debug("Wrote worker output", "file", testFile, "path", path)
	return nil
}

// LogSummary writes the human-readable run summary.
func (l *FileLogger) LogSummary(summary string) error {
	path := filepath.Join(l.runDir, summaryFileName)
	if err := os.WriteFile(path, []byte(summary), 0o644); err != nil {
		return fmt.Errorf("failed to write run summary: %w", err)
	}
	l.log.Debug("Wrote run summary", "path", path)
	return nil
}

// sanitizeFilename flattens a test file path into a single safe file name.
func sanitizeFilename(path string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_", "..", "_")
	name := r.Replace(path)
	name = strings.Trim(name, "._")
	if name == "" {
		name = "worker"
	}
	return name
}
