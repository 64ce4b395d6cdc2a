package fasta

import (
	"cmp"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/biogo/hts/fai"
)

// IndexRecord is one line of a FASTA index (.fai).
type IndexRecord struct {
	Name      string
	Length    int64 // residues in the sequence
	Offset    int64 // byte offset of the first residue
	LineBases int64 // residues per full line
	LineWidth int64 // bytes per full line, including the line terminator
}

func newIndexRecord(r fai.Record) IndexRecord {
	return IndexRecord{
		Name:      r.Name,
		Length:    int64(r.Length),
		Offset:    r.Start,
		LineBases: int64(r.BasesPerLine),
		LineWidth: int64(r.BytesPerLine),
	}
}

// ParseIndexRecord parses a single index line.
func ParseIndexRecord(line string) (IndexRecord, error) {
	line = strings.TrimRight(line, "\r\n")
	records, err := readIndex(strings.NewReader(line))
	if err != nil {
		return IndexRecord{}, fmt.Errorf("%w, offending line was: %q", err, line)
	}
	if len(records) != 1 {
		return IndexRecord{}, fmt.Errorf("%w: empty index line", ErrMalformedIndexRecord)
	}
	return newIndexRecord(records[0]), nil
}

// readIndex parses an index with fai.ReadFrom and returns its records in file
// order. Library errors are mapped onto this package's sentinels.
func readIndex(r io.Reader) ([]fai.Record, error) {
	idx, err := fai.ReadFrom(r)
	if err != nil {
		var pe *csv.ParseError
		switch {
		case errors.Is(err, fai.ErrNonUnique):
			return nil, fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		case errors.As(err, &pe):
			return nil, fmt.Errorf("%w: %v", ErrMalformedIndexRecord, err)
		default:
			return nil, fmt.Errorf("read fasta index: %w", err)
		}
	}

	records := make([]fai.Record, 0, len(idx))
	for _, rec := range idx {
		if rec.Length < 0 || rec.Start < 0 || (rec.Length > 0 && (rec.BasesPerLine <= 0 || rec.BytesPerLine < rec.BasesPerLine)) {
			return nil, fmt.Errorf("%w: invalid line geometry for %s", ErrMalformedIndexRecord, rec.Name)
		}
		records = append(records, rec)
	}
	slices.SortFunc(records, func(a, b fai.Record) int {
		return cmp.Or(cmp.Compare(a.Start, b.Start), strings.Compare(a.Name, b.Name))
	})
	return records, nil
}
