package fasta

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

const headerMarker = '>'

// ParseRecord reads a single FASTA record from r. Input before the first header
// marker is skipped. Sequence bytes are read until the next header marker, which is
// left unread, or until the end of input. Whitespace inside the sequence is dropped.
// It returns ErrEndOfInput when no header is found before the end of input.
func ParseRecord(r io.ByteScanner) (*Seq, error) {
	for {
		c, err := r.ReadByte()
		if err == io.EOF {
			return nil, ErrEndOfInput
		}
		if err != nil {
			return nil, fmt.Errorf("read fasta: %w", err)
		}
		if c == headerMarker {
			break
		}
	}

	var header []byte
	for {
		c, err := r.ReadByte()
		if err == io.EOF || (err == nil && c == '\n') {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read fasta header: %w", err)
		}
		header = append(header, c)
	}
	name, description := splitHeader(string(header))

	var seq strings.Builder
	for {
		c, err := r.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read fasta sequence %s: %w", name, err)
		}
		if c == headerMarker {
			if err := r.UnreadByte(); err != nil {
				return nil, fmt.Errorf("unread header marker: %w", err)
			}
			break
		}
		if isSpace(c) {
			continue
		}
		seq.WriteByte(c)
	}

	return &Seq{Name: name, Sequence: seq.String(), Description: description}, nil
}

// splitHeader splits a header line (without the marker) into the id and the
// free-text description following the first whitespace run.
func splitHeader(header string) (name, description string) {
	header = strings.TrimSpace(header)
	idx := strings.IndexFunc(header, unicode.IsSpace)
	if idx == -1 {
		return header, ""
	}
	return header[:idx], strings.TrimLeftFunc(header[idx:], unicode.IsSpace)
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// Reader reads consecutive records from a FASTA stream.
type Reader struct {
	br    *bufio.Reader
	count int
}

// NewReader creates a reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// Next reads the next record.
// Returns nil, nil when there are no more records.
func (r *Reader) Next() (*Seq, error) {
	seq, err := ParseRecord(r.br)
	if errors.Is(err, ErrEndOfInput) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.count++
	return seq, nil
}

// Count returns the number of records read so far.
func (r *Reader) Count() int {
	return r.count
}
