package fasta

import (
	"io"
	"strings"
)

// DefaultWrap is the line width used when writing FASTA records.
const DefaultWrap = 100

// Seq is a named biological sequence.
type Seq struct {
	Name        string
	Sequence    string
	Description string // text after the first whitespace run of the header, if any
}

// Len returns the number of residues.
func (s *Seq) Len() int {
	return len(s.Sequence)
}

// Slice returns Sequence[start:end] clamped to the sequence bounds.
func (s *Seq) Slice(start, end int) string {
	start = max(start, 0)
	end = min(end, len(s.Sequence))
	if start >= end {
		return ""
	}
	return s.Sequence[start:end]
}

// FormatFASTA renders seq as a FASTA record with lines of at most wrap residues.
// A non-positive wrap uses DefaultWrap.
func FormatFASTA(seq *Seq, wrap int) string {
	if wrap <= 0 {
		wrap = DefaultWrap
	}

	var sb strings.Builder
	sb.Grow(len(seq.Sequence) + len(seq.Sequence)/wrap + len(seq.Name) + len(seq.Description) + 4)
	sb.WriteByte('>')
	sb.WriteString(seq.Name)
	if seq.Description != "" {
		sb.WriteByte(' ')
		sb.WriteString(seq.Description)
	}
	sb.WriteByte('\n')

	for i := 0; i < len(seq.Sequence); i += wrap {
		end := min(i+wrap, len(seq.Sequence))
		sb.WriteString(seq.Sequence[i:end])
		sb.WriteByte('\n')
	}
	if len(seq.Sequence) == 0 {
		sb.WriteByte('\n')
	}
	return sb.String()
}

// WriteFASTA writes seq to w as a FASTA record.
func WriteFASTA(w io.Writer, seq *Seq, wrap int) error {
	_, err := io.WriteString(w, FormatFASTA(seq, wrap))
	return err
}
