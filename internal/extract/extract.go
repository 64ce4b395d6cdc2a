// Package extract splices transcript and CDS sequences out of indexed genomes.
package extract

import (
	"bufio"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/inodb/featureio/internal/fasta"
	"github.com/inodb/featureio/internal/feature"
	"github.com/inodb/featureio/internal/format"
)

// SequenceSource returns the residues of a named sequence between 1-based
// inclusive coordinates. Both fasta.IndexedFasta and fasta.Collection
// satisfy it.
type SequenceSource interface {
	Fetch(name string, start, end int64) (string, error)
}

// Extractor builds spliced sequences for feature records.
type Extractor struct {
	src    SequenceSource
	set    feature.IntervalSet
	logger *zap.Logger
}

// New creates an extractor that splices the given interval set from src.
func New(src SequenceSource, set feature.IntervalSet) *Extractor {
	return &Extractor{
		src:    src,
		set:    set,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for warning and info messages.
func (e *Extractor) SetLogger(l *zap.Logger) {
	e.logger = l
}

// Extract returns the spliced sequence of r, named after the record.
func (e *Extractor) Extract(r *feature.Record) (*fasta.Seq, error) {
	seq, err := r.Sequence(e.set, func(iv feature.Interval) (string, error) {
		return e.src.Fetch(r.Chrom, iv.Start, iv.End)
	})
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", r.Name, err)
	}
	return &fasta.Seq{
		Name:        r.Name,
		Sequence:    seq,
		Description: fmt.Sprintf("%s:%d-%d(%s) %s", r.Chrom, r.Start, r.End, r.Strand, e.set),
	}, nil
}

// SeqWriter receives extracted sequences in input order.
type SeqWriter interface {
	Write(seq *fasta.Seq) error
	Flush() error
}

// extraction is the outcome of extracting one record.
type extraction struct {
	seq *fasta.Seq
	err error
}

// ExtractAll reads every record from reader, extracts it using workers
// goroutines and writes the results in input order. Records that fail to
// extract are logged and skipped. If workers is 0, runtime.NumCPU() is used.
func (e *Extractor) ExtractAll(reader format.Reader, writer SeqWriter, workers int) error {
	next := func() (*feature.Record, bool, error) {
		r, err := reader.Next()
		if err != nil {
			return nil, false, fmt.Errorf("read record: %w", err)
		}
		return r, r != nil, nil
	}
	splice := func(r *feature.Record) extraction {
		seq, err := e.Extract(r)
		return extraction{seq: seq, err: err}
	}

	skipped := 0
	emit := func(r *feature.Record, x extraction) error {
		if x.err != nil {
			skipped++
			e.logger.Warn("failed to extract sequence",
				zap.String("name", r.Name),
				zap.String("chrom", r.Chrom),
				zap.Error(x.err))
			return nil
		}
		if err := writer.Write(x.seq); err != nil {
			return fmt.Errorf("write sequence %s: %w", r.Name, err)
		}
		return nil
	}

	count, err := orderedMap(workers, next, splice, emit)
	if err != nil {
		return err
	}

	if count == 0 {
		e.logger.Info("0 records processed")
	} else {
		e.logger.Debug("extraction finished",
			zap.Int("records", count),
			zap.Int("skipped", skipped))
	}

	return writer.Flush()
}

// FASTAWriter writes sequences as wrapped FASTA records.
type FASTAWriter struct {
	w    *bufio.Writer
	wrap int
}

// NewFASTAWriter creates a FASTA writer with lines of at most wrap residues.
func NewFASTAWriter(w io.Writer, wrap int) *FASTAWriter {
	return &FASTAWriter{w: bufio.NewWriter(w), wrap: wrap}
}

// Write writes a single record.
func (fw *FASTAWriter) Write(seq *fasta.Seq) error {
	return fasta.WriteFASTA(fw.w, seq, fw.wrap)
}

// Flush flushes buffered output.
func (fw *FASTAWriter) Flush() error {
	return fw.w.Flush()
}
