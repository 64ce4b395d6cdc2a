package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/inodb/featureio/internal/feature"
	"github.com/inodb/featureio/internal/format"
)

// openInput opens path for reading; "" and "-" read from the command's stdin.
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

// createOutput creates path for writing; "" and "-" write to the command's stdout.
func createOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return f, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// newFormatReader returns a reader for the named format, reporting unknown
// names as usage errors.
func newFormatReader(name string, r io.Reader) (format.Reader, error) {
	fr, err := format.NewReader(name, r)
	if err != nil {
		return nil, &usageError{err: err}
	}
	return fr, nil
}

// readRecords reads every record of the named format from path.
func readRecords(cmd *cobra.Command, path, formatName string) ([]*feature.Record, error) {
	in, err := openInput(cmd, path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	fr, err := newFormatReader(formatName, in)
	if err != nil {
		return nil, err
	}
	records, err := format.ReadAll(fr)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}
