package format

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/inodb/featureio/internal/feature"
)

// BED12Reader reads twelve-column BED records.
type BED12Reader struct {
	lr lineReader
}

// NewBED12Reader creates a BED12 reader over r.
func NewBED12Reader(r io.Reader) *BED12Reader {
	return &BED12Reader{lr: lineReader{br: bufio.NewReader(r)}}
}

// Next reads the next record, skipping comments and blank lines.
// Returns nil, nil when there are no more records.
func (p *BED12Reader) Next() (*feature.Record, error) {
	for {
		line, err := p.lr.readLine()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read bed12: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != feature.FieldCount {
			return nil, &ParseError{
				Format:  "bed12",
				Line:    p.lr.lineNumber,
				Message: fmt.Sprintf("incorrect number of fields: expected %d, found %d", feature.FieldCount, len(fields)),
			}
		}

		rec, err := feature.FromFields(fields, nil)
		if err != nil {
			return nil, &ParseError{Format: "bed12", Line: p.lr.lineNumber, Message: err.Error()}
		}
		return rec, nil
	}
}

// LineNumber returns the current line number.
func (p *BED12Reader) LineNumber() int {
	return p.lr.lineNumber
}

// BED12Writer writes records as twelve-column BED.
type BED12Writer struct {
	w *bufio.Writer
}

// NewBED12Writer creates a new BED12 writer.
func NewBED12Writer(w io.Writer) *BED12Writer {
	return &BED12Writer{w: bufio.NewWriter(w)}
}

// WriteHeader is a no-op; BED12 has no header.
func (bw *BED12Writer) WriteHeader() error {
	return nil
}

// Write writes a single record.
func (bw *BED12Writer) Write(r *feature.Record) error {
	_, err := bw.w.WriteString(r.String() + "\n")
	return err
}

// Flush flushes buffered output.
func (bw *BED12Writer) Flush() error {
	return bw.w.Flush()
}
