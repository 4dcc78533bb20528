package types

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCoverageAdd(t *testing.T) {
	a := &FileCoverage{
		Lines:     map[int]int{10: 1, 12: 1},
		Functions: map[string]int{"setup": 1},
	}
	b := &FileCoverage{
		Lines:     map[int]int{10: 2, 15: 1},
		Functions: map[string]int{"setup": 2, "teardown": 1},
	}

	a.Add(b)

	assert.Equal(t, map[int]int{10: 3, 12: 1, 15: 1}, a.Lines)
	assert.Equal(t, map[string]int{"setup": 3, "teardown": 1}, a.Functions)
	// Source must be untouched
	assert.Equal(t, map[int]int{10: 2, 15: 1}, b.Lines)
}

func TestFileCoverageAddNil(t *testing.T) {
	a := NewFileCoverage()
	a.Lines[1] = 1
	a.Add(nil)
	assert.Equal(t, map[int]int{1: 1}, a.Lines)
}

func TestCoverageMapMerge(t *testing.T) {
	merged := make(CoverageMap)

	merged.Merge(CoverageMap{
		"f.lua": {Lines: map[int]int{10: 1, 12: 1}},
	})
	merged.Merge(CoverageMap{
		"f.lua": {Lines: map[int]int{10: 2, 15: 1}},
		"g.lua": {Functions: map[string]int{"g": 4}},
	})

	require.Contains(t, merged, "f.lua")
	require.Contains(t, merged, "g.lua")
	assert.Equal(t, map[int]int{10: 3, 12: 1, 15: 1}, merged["f.lua"].Lines)
	assert.Equal(t, map[string]int{"g": 4}, merged["g.lua"].Functions)
}

func TestCoverageMapMergeCopiesNewEntries(t *testing.T) {
	source := CoverageMap{
		"f.lua": {Lines: map[int]int{1: 1}},
	}
	merged := make(CoverageMap)
	merged.Merge(source)

	// Mutating the merged copy must not reach back into the source
	merged["f.lua"].Lines[1] = 99
	assert.Equal(t, 1, source["f.lua"].Lines[1])
}

// TestCoverageMapMergeOrderIndependent folds the same set of coverage maps
// in random permutations and requires identical results every time.
func TestCoverageMapMergeOrderIndependent(t *testing.T) {
	parts := []CoverageMap{
		{"a.lua": {Lines: map[int]int{1: 1, 2: 3}}},
		{"a.lua": {Lines: map[int]int{2: 1}, Functions: map[string]int{"f": 1}}},
		{"b.lua": {Lines: map[int]int{7: 2}}},
		{"a.lua": {Functions: map[string]int{"f": 2, "g": 1}}},
	}

	reference := make(CoverageMap)
	for _, p := range parts {
		reference.Merge(p)
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		perm := rng.Perm(len(parts))
		merged := make(CoverageMap)
		for _, idx := range perm {
			merged.Merge(parts[idx])
		}
		assert.Equal(t, reference, merged, "merge must be order-independent (perm %v)", perm)
	}
}

func TestCoverageMapTotalLineHits(t *testing.T) {
	cm := CoverageMap{
		"a.lua": {Lines: map[int]int{1: 1, 2: 3}},
		"b.lua": {Lines: map[int]int{5: 2}},
	}
	assert.Equal(t, 6, cm.TotalLineHits())
	assert.Equal(t, 0, make(CoverageMap).TotalLineHits())
}
