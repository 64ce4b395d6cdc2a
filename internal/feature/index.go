package feature

import (
	"sort"
)

// Index answers locus-level overlap queries over a fixed set of records.
// Records are grouped by chromosome and never modified after the build.
type Index struct {
	trees map[string]*intervalTree
	count int
}

// NewIndex builds an index over records.
func NewIndex(records []*Record) *Index {
	byChrom := make(map[string][]*Record)
	for _, r := range records {
		byChrom[r.Chrom] = append(byChrom[r.Chrom], r)
	}

	idx := &Index{trees: make(map[string]*intervalTree, len(byChrom)), count: len(records)}
	for chrom, rs := range byChrom {
		idx.trees[chrom] = buildIntervalTree(rs)
	}
	return idx
}

// Len returns the number of indexed records.
func (idx *Index) Len() int {
	return idx.count
}

// Chromosomes returns a sorted list of chromosomes in the index.
func (idx *Index) Chromosomes() []string {
	chroms := make([]string, 0, len(idx.trees))
	for chrom := range idx.trees {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}

// FindOverlaps returns the records on chrom whose [Start, End] intersects
// [start, end], in ascending start order. Strand is ignored.
func (idx *Index) FindOverlaps(chrom string, start, end int64) []*Record {
	t, ok := idx.trees[chrom]
	if !ok {
		return nil
	}
	return t.query(start, end)
}

// Candidates returns the indexed records that pass LocusOverlap with r.
func (idx *Index) Candidates(r *Record) []*Record {
	var out []*Record
	for _, c := range idx.FindOverlaps(r.Chrom, r.Start, r.End) {
		if r.LocusOverlap(c) {
			out = append(out, c)
		}
	}
	return out
}

// intervalTree is a sorted slice with a running maximum of end coordinates,
// giving O(log n + k) queries.
type intervalTree struct {
	records []*Record
	maxEnd  []int64 // maxEnd[i] = max(End) for records[:i+1]
}

func buildIntervalTree(records []*Record) *intervalTree {
	sorted := append([]*Record(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	maxEnd := make([]int64, len(sorted))
	for i, r := range sorted {
		maxEnd[i] = r.End
		if i > 0 && maxEnd[i-1] > maxEnd[i] {
			maxEnd[i] = maxEnd[i-1]
		}
	}
	return &intervalTree{records: sorted, maxEnd: maxEnd}
}

func (t *intervalTree) query(start, end int64) []*Record {
	// Candidates are the records with Start <= end.
	hi := sort.Search(len(t.records), func(i int) bool {
		return t.records[i].Start > end
	})

	var result []*Record
	for i := hi - 1; i >= 0; i-- {
		// Nothing at or before i reaches start.
		if t.maxEnd[i] < start {
			break
		}
		if t.records[i].End >= start {
			result = append(result, t.records[i])
		}
	}

	for l, r := 0, len(result)-1; l < r; l, r = l+1, r-1 {
		result[l], result[r] = result[r], result[l]
	}
	return result
}
