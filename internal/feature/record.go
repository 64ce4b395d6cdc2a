// Package feature provides gene and transcript models with exon and CDS geometry.
package feature

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRecord is returned when positional fields cannot form a record.
var ErrInvalidRecord = errors.New("invalid feature record")

// FieldCount is the number of positional fields accepted by FromFields.
const FieldCount = 12

// Interval is a pair of absolute genomic coordinates.
type Interval struct {
	Start int64
	End   int64
}

// Len returns the closed-interval span, End - Start + 1.
func (iv Interval) Len() int64 {
	return iv.End - iv.Start + 1
}

// Overlaps reports whether two closed intervals share at least one coordinate.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start <= o.End && o.Start <= iv.End
}

// OverlapLength returns max(0, min(ends) - max(starts)).
func (iv Interval) OverlapLength(o Interval) int64 {
	n := min(iv.End, o.End) - max(iv.Start, o.Start)
	if n < 0 {
		return 0
	}
	return n
}

// Fields holds the positional values a format reader hands to New.
// BlockSizes and BlockStarts are comma-separated; empty tokens are dropped.
type Fields struct {
	Chrom       string
	Start       int64
	End         int64
	Name        string
	Score       int64
	Strand      string
	CDSStart    int64
	CDSEnd      int64
	ItemRGB     string
	BlockCount  int
	BlockSizes  string
	BlockStarts string
	Attrs       map[string]string
}

// Record represents one transcript model. Derived geometry is computed once by New
// and must not be changed afterwards.
type Record struct {
	Chrom       string
	Start       int64
	End         int64
	Name        string
	Score       int64
	Strand      string // "+" or "-"
	CDSStart    int64
	CDSEnd      int64
	ItemRGB     string
	BlockCount  int
	BlockSizes  []int64
	BlockStarts []int64 // offsets from Start
	Attrs       map[string]string

	Exons     []Interval
	CDSExons  []Interval
	Length    int64
	CDSLength int64
	FiveP     int64
	CDSFiveP  int64
}

// New builds a record and derives its exon and CDS geometry.
func New(f Fields) (*Record, error) {
	sizes, err := parseIntList(f.BlockSizes)
	if err != nil {
		return nil, fmt.Errorf("%w: block sizes: %v", ErrInvalidRecord, err)
	}
	starts, err := parseIntList(f.BlockStarts)
	if err != nil {
		return nil, fmt.Errorf("%w: block starts: %v", ErrInvalidRecord, err)
	}

	if f.Start > f.End {
		return nil, fmt.Errorf("%w: %s: start %d after end %d", ErrInvalidRecord, f.Name, f.Start, f.End)
	}
	if f.BlockCount != len(sizes) || f.BlockCount != len(starts) {
		return nil, fmt.Errorf("%w: %s: block count %d with %d sizes and %d starts",
			ErrInvalidRecord, f.Name, f.BlockCount, len(sizes), len(starts))
	}
	for _, s := range starts {
		if s < 0 {
			return nil, fmt.Errorf("%w: %s: negative block start %d", ErrInvalidRecord, f.Name, s)
		}
	}

	r := &Record{
		Chrom:       f.Chrom,
		Start:       f.Start,
		End:         f.End,
		Name:        f.Name,
		Score:       f.Score,
		Strand:      f.Strand,
		CDSStart:    f.CDSStart,
		CDSEnd:      f.CDSEnd,
		ItemRGB:     f.ItemRGB,
		BlockCount:  f.BlockCount,
		BlockSizes:  sizes,
		BlockStarts: starts,
		Attrs:       copyAttrs(f.Attrs),
	}
	r.derive()
	return r, nil
}

// FromFields builds a record from the twelve positional text fields
// (chrom, start, end, name, score, strand, cdsStart, cdsEnd, itemRgb,
// blockCount, blockSizes, blockStarts).
func FromFields(fields []string, attrs map[string]string) (*Record, error) {
	if len(fields) != FieldCount {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", ErrInvalidRecord, FieldCount, len(fields))
	}

	ints := make([]int64, 0, 6)
	for _, i := range []int{1, 2, 4, 6, 7, 9} {
		v, err := strconv.ParseInt(strings.TrimSpace(fields[i]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: field %d: %v", ErrInvalidRecord, i+1, err)
		}
		ints = append(ints, v)
	}

	return New(Fields{
		Chrom:       fields[0],
		Start:       ints[0],
		End:         ints[1],
		Name:        fields[3],
		Score:       ints[2],
		Strand:      fields[5],
		CDSStart:    ints[3],
		CDSEnd:      ints[4],
		ItemRGB:     fields[8],
		BlockCount:  int(ints[5]),
		BlockSizes:  fields[10],
		BlockStarts: fields[11],
		Attrs:       attrs,
	})
}

// derive computes exons, CDS exons, lengths and 5' coordinates from the block layout.
func (r *Record) derive() {
	r.Exons = make([]Interval, 0, len(r.BlockStarts))
	r.CDSExons = nil
	coding := r.CDSStart < r.CDSEnd

	for i, off := range r.BlockStarts {
		exon := Interval{Start: r.Start + off, End: r.Start + off + r.BlockSizes[i]}
		r.Exons = append(r.Exons, exon)

		if !coding {
			continue
		}
		lo, hi := max(r.CDSStart, exon.Start), min(r.CDSEnd, exon.End)
		if lo < hi {
			r.CDSExons = append(r.CDSExons, Interval{Start: lo, End: hi})
		}
	}

	r.Length = sumLen(r.Exons)
	r.CDSLength = sumLen(r.CDSExons)

	if r.Strand == "+" {
		r.FiveP = r.Start
		r.CDSFiveP = r.CDSStart
	} else {
		r.FiveP = r.End
		r.CDSFiveP = r.CDSEnd
	}
}

// Validate checks that every block lies within [Start, End].
// New does not enforce this because several source formats emit blocks whose
// exclusive end runs past the record end.
func (r *Record) Validate() error {
	for _, e := range r.Exons {
		if e.Start < r.Start || e.End > r.End {
			return fmt.Errorf("%w: %s: block %d-%d outside %d-%d",
				ErrInvalidRecord, r.Name, e.Start, e.End, r.Start, r.End)
		}
	}
	return nil
}

// IsForwardStrand returns true if the record is on the forward strand.
func (r *Record) IsForwardStrand() bool {
	return r.Strand == "+"
}

// IsCoding returns true if the record has at least one CDS exon.
func (r *Record) IsCoding() bool {
	return len(r.CDSExons) > 0
}

// Copy returns a structurally independent duplicate.
func (r *Record) Copy() *Record {
	c := *r
	c.BlockSizes = append([]int64(nil), r.BlockSizes...)
	c.BlockStarts = append([]int64(nil), r.BlockStarts...)
	c.Exons = append([]Interval(nil), r.Exons...)
	if r.CDSExons != nil {
		c.CDSExons = append([]Interval(nil), r.CDSExons...)
	}
	c.Attrs = copyAttrs(r.Attrs)
	return &c
}

// Modified returns a copy with fn applied to it. Derived geometry is not
// recomputed, so fn must not change the block layout.
func (r *Record) Modified(fn func(*Record)) *Record {
	c := r.Copy()
	fn(c)
	return c
}

// BlockSizesString returns the block sizes joined by commas.
func (r *Record) BlockSizesString() string {
	return joinInts(r.BlockSizes)
}

// BlockStartsString returns the block starts joined by commas.
func (r *Record) BlockStartsString() string {
	return joinInts(r.BlockStarts)
}

// String returns the twelve positional fields joined by tabs.
func (r *Record) String() string {
	return strings.Join([]string{
		r.Chrom,
		strconv.FormatInt(r.Start, 10),
		strconv.FormatInt(r.End, 10),
		r.Name,
		strconv.FormatInt(r.Score, 10),
		r.Strand,
		strconv.FormatInt(r.CDSStart, 10),
		strconv.FormatInt(r.CDSEnd, 10),
		r.ItemRGB,
		strconv.Itoa(r.BlockCount),
		r.BlockSizesString(),
		r.BlockStartsString(),
	}, "\t")
}

func parseIntList(s string) ([]int64, error) {
	var out []int64
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func joinInts(vals []int64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}

func sumLen(ivs []Interval) int64 {
	var n int64
	for _, iv := range ivs {
		n += iv.Len()
	}
	return n
}

func copyAttrs(attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
