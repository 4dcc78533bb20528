package types

// FileCoverage holds execution-hit counts for a single covered source file.
type FileCoverage struct {
	// Lines maps a 1-based line number to its execution count.
	Lines map[int]int `json:"lines,omitempty" yaml:"lines,omitempty"`
	// Functions maps a function name to its call count.
	Functions map[string]int `json:"functions,omitempty" yaml:"functions,omitempty"`
}

// NewFileCoverage returns an empty FileCoverage with initialized maps.
func NewFileCoverage() *FileCoverage {
	return &FileCoverage{
		Lines:     make(map[int]int),
		Functions: make(map[string]int),
	}
}

// Clone returns a deep copy.
func (fc *FileCoverage) Clone() *FileCoverage {
	cp := NewFileCoverage()
	for line, hits := range fc.Lines {
		cp.Lines[line] = hits
	}
	for fn, hits := range fc.Functions {
		cp.Functions[fn] = hits
	}
	return cp
}

// Add folds another file's counts into this one by per-key integer
// addition. Addition keeps the merge commutative and associative, so the
// final counts do not depend on worker completion order.
func (fc *FileCoverage) Add(other *FileCoverage) {
	if other == nil {
		return
	}
	if fc.Lines == nil {
		fc.Lines = make(map[int]int)
	}
	if fc.Functions == nil {
		fc.Functions = make(map[string]int)
	}
	for line, hits := range other.Lines {
		fc.Lines[line] += hits
	}
	for fn, hits := range other.Functions {
		fc.Functions[fn] += hits
	}
}

// CoverageMap maps a covered source-file path to its hit counts. This is
// the shape downstream report formatters consume; it must stay stable.
type CoverageMap map[string]*FileCoverage

// Merge folds another coverage map into this one. Files absent from the
// receiver are deep-copied in; files present in both are merged by
// addition, never overwritten.
func (cm CoverageMap) Merge(other CoverageMap) {
	for path, cov := range other {
		if cov == nil {
			continue
		}
		existing, ok := cm[path]
		if !ok {
			cm[path] = cov.Clone()
			continue
		}
		existing.Add(cov)
	}
}

// TotalLineHits returns the sum of all line execution counts, mostly
// useful for logging and metrics.
func (cm CoverageMap) TotalLineHits() int {
	total := 0
	for _, cov := range cm {
		for _, hits := range cov.Lines {
			total += hits
		}
	}
	return total
}
