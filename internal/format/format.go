// Package format reads and writes feature records in common annotation formats.
package format

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/inodb/featureio/internal/feature"
)

// Reader is the interface for parsers that read feature records.
type Reader interface {
	// Next reads the next record.
	// Returns nil, nil when there are no more records.
	Next() (*feature.Record, error)

	// LineNumber returns the current line number being processed.
	LineNumber() int
}

// Writer defines the interface for writing feature records.
type Writer interface {
	WriteHeader() error
	Write(r *feature.Record) error
	Flush() error
}

// ParseError reports a malformed line in an input file.
type ParseError struct {
	Format  string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s parse error at line %d: %s", e.Format, e.Line, e.Message)
}

var readers = map[string]func(io.Reader) Reader{
	"bed12":       func(r io.Reader) Reader { return NewBED12Reader(r) },
	"psl":         func(r io.Reader) Reader { return NewPSLReader(r, false) },
	"blatpsl":     func(r io.Reader) Reader { return NewPSLReader(r, true) },
	"augustusgtf": func(r io.Reader) Reader { return NewAugustusGTFReader(r) },
}

var writers = map[string]func(io.Writer) Writer{
	"bed12":               func(w io.Writer) Writer { return NewBED12Writer(w) },
	"gff3":                func(w io.Writer) Writer { return NewGFF3Writer(w, DefaultGFF3Source) },
	"augustus_exon_hints": func(w io.Writer) Writer { return NewExonHintWriter(w, DefaultExonHintOptions()) },
}

// Readers returns the names of the supported input formats.
func Readers() []string {
	return sortedKeys(readers)
}

// Writers returns the names of the supported output formats.
func Writers() []string {
	return sortedKeys(writers)
}

// NewReader returns a reader for the named format.
func NewReader(name string, r io.Reader) (Reader, error) {
	fn, ok := readers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown format %s, should be one of %s", name, strings.Join(Readers(), ","))
	}
	return fn(r), nil
}

// NewWriter returns a writer for the named format.
func NewWriter(name string, w io.Writer) (Writer, error) {
	fn, ok := writers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown format %s, should be one of %s", name, strings.Join(Writers(), ","))
	}
	return fn(w), nil
}

// ReadAll drains r.
func ReadAll(r Reader) ([]*feature.Record, error) {
	var out []*feature.Record
	for {
		rec, err := r.Next()
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return out, nil
		}
		out = append(out, rec)
	}
}

// WriteAll writes the header, every record, and flushes.
func WriteAll(w Writer, records []*feature.Record) error {
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err := w.Write(r); err != nil {
			return fmt.Errorf("write %s: %w", r.Name, err)
		}
	}
	return w.Flush()
}

// ByName maps record names to records. Later records replace earlier ones.
func ByName(records []*feature.Record) map[string]*feature.Record {
	m := make(map[string]*feature.Record, len(records))
	for _, r := range records {
		m[r.Name] = r
	}
	return m
}

// lineReader tracks line numbers over a buffered reader.
type lineReader struct {
	br         *bufio.Reader
	lineNumber int
}

// readLine returns the next line without its terminator, or io.EOF.
func (lr *lineReader) readLine() (string, error) {
	line, err := lr.br.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	lr.lineNumber++
	return strings.TrimRight(line, "\r\n"), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
