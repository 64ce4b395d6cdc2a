// Package fasta provides FASTA parsing and random access to indexed FASTA files.
package fasta

import "errors"

var (
	// ErrMalformedIndexRecord is returned for an index line without exactly five
	// tab-separated fields or with non-integer numeric fields.
	ErrMalformedIndexRecord = errors.New("malformed fasta index record")

	// ErrMissingFile is returned when a sequence file or its index does not exist.
	ErrMissingFile = errors.New("missing file")

	// ErrDuplicateKey is returned when a sequence name appears more than once in an
	// index or across the files of a collection.
	ErrDuplicateKey = errors.New("duplicate sequence name")

	// ErrNotFound is returned when looking up a name that is not indexed.
	ErrNotFound = errors.New("sequence not found")

	// ErrEndOfInput is returned when no header remains before the end of input.
	ErrEndOfInput = errors.New("end of fasta input")

	// ErrHeaderNotFound is returned when scanning back from an index offset reaches
	// the start of the file without finding a header line.
	ErrHeaderNotFound = errors.New("fasta header not found")
)
