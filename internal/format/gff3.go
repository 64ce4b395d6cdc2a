package format

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/inodb/featureio/internal/feature"
)

// DefaultGFF3Source is the source column written when none is given.
const DefaultGFF3Source = "featureio"

// GFF3Writer writes each record as a gene with one mRNA, its exons and its
// phased CDS segments.
type GFF3Writer struct {
	w      *bufio.Writer
	source string
}

// NewGFF3Writer creates a GFF3 writer using source for column two.
func NewGFF3Writer(w io.Writer, source string) *GFF3Writer {
	if source == "" {
		source = DefaultGFF3Source
	}
	return &GFF3Writer{w: bufio.NewWriter(w), source: source}
}

// WriteHeader writes the version pragma.
func (g *GFF3Writer) WriteHeader() error {
	_, err := g.w.WriteString("##gff-version 3\n")
	return err
}

// Write writes the gene hierarchy for r. Exons and CDS segments are numbered
// from 0; CDS segments follow transcription order.
func (g *GFF3Writer) Write(r *feature.Record) error {
	geneAttrs := [][2]string{{"ID", r.Name}, {"Name", r.Name}}
	for _, k := range sortedKeys(r.Attrs) {
		if k == "ID" || k == "Name" || k == "Parent" {
			continue
		}
		geneAttrs = append(geneAttrs, [2]string{k, r.Attrs[k]})
	}
	if err := g.line(r, "gene", r.Start, r.End, ".", geneAttrs); err != nil {
		return err
	}

	mrnaID := r.Name + ".mRNA.1"
	if err := g.line(r, "mRNA", r.Start, r.End, ".", [][2]string{{"ID", mrnaID}, {"Parent", r.Name}}); err != nil {
		return err
	}

	for i, e := range r.Exons {
		id := fmt.Sprintf("%s.exon.%d", r.Name, i)
		if err := g.line(r, "exon", e.Start, e.End, ".", [][2]string{{"ID", id}, {"Parent", mrnaID}}); err != nil {
			return err
		}
	}

	cds := slices.Clone(r.CDSExons)
	sort.SliceStable(cds, func(i, j int) bool { return cds[i].Start < cds[j].Start })
	if !r.IsForwardStrand() {
		slices.Reverse(cds)
	}

	var phase int64
	for i, c := range cds {
		id := fmt.Sprintf("%s.CDS.%d", r.Name, i)
		if err := g.line(r, "CDS", c.Start, c.End, strconv.FormatInt(phase, 10), [][2]string{{"ID", id}, {"Parent", mrnaID}}); err != nil {
			return err
		}
		// Block intervals are half-open, so a segment codes End-Start bases.
		phase = nextPhase(c.End-c.Start, phase)
	}

	return nil
}

// Flush flushes buffered output.
func (g *GFF3Writer) Flush() error {
	return g.w.Flush()
}

// nextPhase returns the phase of the segment following one of length n
// written with the given phase.
func nextPhase(n, phase int64) int64 {
	rem := ((n-phase)%3 + 3) % 3
	return (3 - rem) % 3
}

func (g *GFF3Writer) line(r *feature.Record, kind string, start, end int64, phase string, attrs [][2]string) error {
	parts := make([]string, len(attrs))
	for i, kv := range attrs {
		parts[i] = kv[0] + "=" + kv[1]
	}
	_, err := fmt.Fprintf(g.w, "%s\t%s\t%s\t%d\t%d\t.\t%s\t%s\t%s\n",
		r.Chrom, g.source, kind, start, end, r.Strand, phase, strings.Join(parts, ";"))
	return err
}
