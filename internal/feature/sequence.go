package feature

import (
	"slices"
	"strings"
)

// complementTable maps IUPAC nucleotide codes (both cases) to their complement.
// Bytes outside the alphabet map to themselves.
var complementTable = func() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = byte(i)
	}
	const (
		from = "acgtumrwsykvhdbnACGTUMRWSYKVHDBN"
		to   = "tgcaakywsrmbdhvnTGCAAKYWSRMBDHVN"
	)
	for i := 0; i < len(from); i++ {
		t[from[i]] = to[i]
	}
	return t
}()

// Complement returns the complement of a single base.
func Complement(base byte) byte {
	return complementTable[base]
}

// ReverseComplement returns the reverse complement of a nucleotide sequence.
func ReverseComplement(seq string) string {
	n := len(seq)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = complementTable[seq[n-1-i]]
	}
	return string(out)
}

// ExonSequence splices the exons out of a whole-chromosome sequence.
func (r *Record) ExonSequence(chromSeq string) string {
	return r.splice(r.Exons, sliceFrom(chromSeq))
}

// CDSSequence splices the CDS exons out of a whole-chromosome sequence.
func (r *Record) CDSSequence(chromSeq string) string {
	return r.splice(r.CDSExons, sliceFrom(chromSeq))
}

// Sequence splices the chosen interval set using fetch, which returns the bases
// for a 1-based interval. Intervals are joined in ascending start order and the
// result is reverse complemented on the minus strand.
func (r *Record) Sequence(set IntervalSet, fetch func(iv Interval) (string, error)) (string, error) {
	var err error
	seq := r.splice(r.Intervals(set), func(iv Interval) string {
		if err != nil {
			return ""
		}
		var s string
		s, err = fetch(iv)
		return s
	})
	if err != nil {
		return "", err
	}
	return seq, nil
}

func (r *Record) splice(ivs []Interval, fetch func(Interval) string) string {
	sorted := slices.Clone(ivs)
	slices.SortStableFunc(sorted, func(a, b Interval) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		}
		return 0
	})

	var sb strings.Builder
	for _, iv := range sorted {
		sb.WriteString(fetch(iv))
	}
	if r.Strand == "-" {
		return ReverseComplement(sb.String())
	}
	return sb.String()
}

// sliceFrom returns seq[start-1:end], truncated silently to the sequence bounds.
func sliceFrom(seq string) func(Interval) string {
	return func(iv Interval) string {
		lo := max(iv.Start-1, 0)
		hi := min(iv.End, int64(len(seq)))
		if lo >= hi {
			return ""
		}
		return seq[lo:hi]
	}
}
