package fasta

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeIndexed writes seqs as a wrapped FASTA file plus a samtools-style .fai
// and returns the FASTA path.
func writeIndexed(t *testing.T, dir, name string, wrap int, seqs ...*Seq) string {
	t.Helper()

	var fa, fai strings.Builder
	for _, s := range seqs {
		header := ">" + s.Name
		if s.Description != "" {
			header += " " + s.Description
		}
		fa.WriteString(header + "\n")
		offset := fa.Len()
		for i := 0; i < len(s.Sequence); i += wrap {
			fa.WriteString(s.Sequence[i:min(i+wrap, len(s.Sequence))] + "\n")
		}
		fmt.Fprintf(&fai, "%s\t%d\t%d\t%d\t%d\n", s.Name, len(s.Sequence), offset, wrap, wrap+1)
	}

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(fa.String()), 0644))
	require.NoError(t, os.WriteFile(path+IndexSuffix, []byte(fai.String()), 0644))
	return path
}
