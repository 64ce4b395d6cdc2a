package feature

import (
	"slices"
)

// IntervalSet selects which interval list of a record a comparison uses.
type IntervalSet int

const (
	Exons IntervalSet = iota
	CDSExons
)

// String returns the set name as used on the command line.
func (s IntervalSet) String() string {
	if s == CDSExons {
		return "cds"
	}
	return "exons"
}

// Intervals returns the record's exons or CDS exons.
func (r *Record) Intervals(set IntervalSet) []Interval {
	if set == CDSExons {
		return r.CDSExons
	}
	return r.Exons
}

// LocusOverlap reports whether two records share chromosome and strand and
// their [Start, End] spans intersect. It is the pre-filter for every
// per-interval comparison below.
func (r *Record) LocusOverlap(o *Record) bool {
	if r.Start > o.End || o.Start > r.End {
		return false
	}
	return r.Chrom == o.Chrom && r.Strand == o.Strand
}

// Overlaps reports whether any interval of r intersects any interval of o.
func (r *Record) Overlaps(o *Record, set IntervalSet) bool {
	if !r.LocusOverlap(o) {
		return false
	}
	for _, a := range r.Intervals(set) {
		for _, b := range o.Intervals(set) {
			if a.Overlaps(b) {
				return true
			}
		}
	}
	return false
}

// OverlapLength sums the overlap of every interval pair. Overlap shared by more
// than one pair is counted once per pair.
func (r *Record) OverlapLength(o *Record, set IntervalSet) int64 {
	if !r.LocusOverlap(o) {
		return 0
	}
	var n int64
	for _, a := range r.Intervals(set) {
		for _, b := range o.Intervals(set) {
			n += a.OverlapLength(b)
		}
	}
	return n
}

// IsIsoform reports whether the records overlap in locus and share at least one
// interval with identical start and end.
func (r *Record) IsIsoform(o *Record, set IntervalSet) bool {
	if !r.LocusOverlap(o) {
		return false
	}
	for _, a := range r.Intervals(set) {
		for _, b := range o.Intervals(set) {
			if a == b {
				return true
			}
		}
	}
	return false
}

// Identical reports whether both records carry the same set of intervals,
// compared after sorting.
func (r *Record) Identical(o *Record, set IntervalSet) bool {
	a, b := sortedIntervals(r.Intervals(set)), sortedIntervals(o.Intervals(set))
	return slices.Equal(a, b)
}

func sortedIntervals(ivs []Interval) []Interval {
	out := slices.Clone(ivs)
	slices.SortFunc(out, compareIntervals)
	return out
}

func compareIntervals(a, b Interval) int {
	if a.Start != b.Start {
		if a.Start < b.Start {
			return -1
		}
		return 1
	}
	if a.End < b.End {
		return -1
	}
	if a.End > b.End {
		return 1
	}
	return 0
}
