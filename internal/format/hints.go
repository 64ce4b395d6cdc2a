package format

import (
	"bufio"
	"fmt"
	"io"

	"github.com/inodb/featureio/internal/feature"
)

// ExonHintOptions controls the hint lines written for AUGUSTUS.
type ExonHintOptions struct {
	// CDSOnly writes hints for CDS exons instead of all exons.
	CDSOnly        bool
	Source         string
	FeatureType    string
	Priority       int
	AugustusSource string
}

// DefaultExonHintOptions returns the options used by the registry writer.
func DefaultExonHintOptions() ExonHintOptions {
	return ExonHintOptions{
		CDSOnly:        true,
		Source:         "featureio",
		FeatureType:    "exon",
		Priority:       4,
		AugustusSource: "E",
	}
}

// ExonHintWriter writes one AUGUSTUS hint line per exon, grouped by record name.
type ExonHintWriter struct {
	w    *bufio.Writer
	opts ExonHintOptions
}

// NewExonHintWriter creates a hint writer.
func NewExonHintWriter(w io.Writer, opts ExonHintOptions) *ExonHintWriter {
	return &ExonHintWriter{w: bufio.NewWriter(w), opts: opts}
}

// WriteHeader is a no-op; hint files have no header.
func (h *ExonHintWriter) WriteHeader() error {
	return nil
}

// Write writes the hints for r.
func (h *ExonHintWriter) Write(r *feature.Record) error {
	exons := r.Exons
	if h.opts.CDSOnly {
		exons = r.CDSExons
	}
	for _, e := range exons {
		_, err := fmt.Fprintf(h.w, "%s\t%s\t%s\t%d\t%d\t.\t%s\t.\tgrp=%s;pri=%d;src=%s\n",
			r.Chrom, h.opts.Source, h.opts.FeatureType, e.Start, e.End, r.Strand,
			r.Name, h.opts.Priority, h.opts.AugustusSource)
		if err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes buffered output.
func (h *ExonHintWriter) Flush() error {
	return h.w.Flush()
}
