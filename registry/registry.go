package registry

import (
	"fmt"
	"os"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/yaml.v3"

	"github.com/spectral-sh/specrun/types"
)

// Registry loads the run list: the explicit, ordered set of test files a
// run executes, plus run-wide defaults. There is no discovery here; the
// file list is whatever the run-list names, in that order.
type Registry struct {
	config Config
	tasks  []types.TestFileTask
	tags   []string
	mu     sync.RWMutex
}

// Config contains registry configuration.
type Config struct {
	Log         log.Logger
	RunListFile string
}

// runList is the on-disk YAML shape.
type runList struct {
	Tags  []string    `yaml:"tags,omitempty"`
	Files []fileEntry `yaml:"files"`
}

// fileEntry accepts either a bare string or a mapping with a path key,
// so both of these parse:
//
//	files:
//	  - spec/core_spec.lua
//	  - path: spec/net_spec.lua
type fileEntry struct {
	Path string `yaml:"path"`
}

func (e *fileEntry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		e.Path = value.Value
		return nil
	}
	type rawEntry fileEntry
	var raw rawEntry
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*e = fileEntry(raw)
	return nil
}

// NewRegistry creates a registry and loads the run list.
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.RunListFile == "" {
		return nil, fmt.Errorf("run list file is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}

	r := &Registry{config: cfg}
	if err := r.load(cfg.RunListFile); err != nil {
		return nil, fmt.Errorf("failed to load run list: %w", err)
	}

	cfg.Log.Debug("Registry loaded", "len(tasks)", len(r.tasks))
	return r, nil
}

func (r *Registry) load(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading run list %s: %w", path, err)
	}

	var list runList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("parsing run list %s: %w", path, err)
	}
	if len(list.Files) == 0 {
		return fmt.Errorf("run list %s names no test files", path)
	}

	tasks := make([]types.TestFileTask, 0, len(list.Files))
	seen := make(map[string]bool, len(list.Files))
	for i, entry := range list.Files {
		if entry.Path == "" {
			return fmt.Errorf("run list %s: entry %d has no path", path, i)
		}
		if seen[entry.Path] {
			r.config.Log.Warn("Duplicate test file in run list, keeping first occurrence", "path", entry.Path)
			continue
		}
		seen[entry.Path] = true
		tasks = append(tasks, types.NewTestFileTask(entry.Path))
	}

	r.tasks = tasks
	r.tags = list.Tags
	return nil
}

// Tasks returns the ordered test-file tasks. The returned slice is a copy.
func (r *Registry) Tasks() []types.TestFileTask {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tasks := make([]types.TestFileTask, len(r.tasks))
	copy(tasks, r.tasks)
	return tasks
}

// DefaultTags returns the run-wide tag filters from the run list.
func (r *Registry) DefaultTags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, len(r.tags))
	copy(tags, r.tags)
	return tags
}
