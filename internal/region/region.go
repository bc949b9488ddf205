// Package region implements half-open byte intervals over a source buffer
// and the sort-and-coalesce merge used to build exclusion sets.
package region

import (
	"slices"
	"sort"
)

// Region is the half-open byte interval [Start, End).
type Region struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by r.
func (r Region) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

// Empty reports whether r covers no bytes.
func (r Region) Empty() bool { return r.End <= r.Start }

// Contains reports whether pos lies inside r.
func (r Region) Contains(pos int) bool { return pos >= r.Start && pos < r.End }

// Covers reports whether other lies entirely inside r.
func (r Region) Covers(other Region) bool {
	return other.Start >= r.Start && other.End <= r.End
}

// Set is a disjoint, ascending list of regions. Build one with Merge.
type Set []Region

// Merge sorts regions by start and coalesces every pair where a.End >= b.Start
// into [a.Start, max(a.End, b.End)). Empty regions are dropped. The input
// slice is not modified.
func Merge(regions []Region) Set {
	sorted := make([]Region, 0, len(regions))
	for _, r := range regions {
		if !r.Empty() {
			sorted = append(sorted, r)
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	slices.SortFunc(sorted, func(a, b Region) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return a.End - b.End
	})

	merged := Set{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if last.End >= r.Start {
			last.End = max(last.End, r.End)
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// Contains reports whether pos falls inside any region of the set.
func (s Set) Contains(pos int) bool {
	// first region whose end lies past pos
	i := sort.Search(len(s), func(i int) bool { return s[i].End > pos })
	return i < len(s) && s[i].Start <= pos
}

// Covers reports whether r lies entirely inside a single region of the set.
func (s Set) Covers(r Region) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i].End > r.Start })
	return i < len(s) && s[i].Covers(r)
}
