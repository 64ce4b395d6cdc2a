package fasta

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeq_Slice(t *testing.T) {
	seq := &Seq{Name: "testname", Sequence: "ACGT"}
	assert.Equal(t, "C", seq.Slice(1, 2))
	assert.Equal(t, "GT", seq.Slice(2, 100))
	assert.Equal(t, "", seq.Slice(3, 1))
	assert.Equal(t, 4, seq.Len())
}

func TestFormatFASTA(t *testing.T) {
	tests := []struct {
		name string
		seq  *Seq
		wrap int
		want string
	}{
		{"even wrap", &Seq{Name: "testname", Sequence: "AAAAAAAA"}, 2, ">testname\nAA\nAA\nAA\nAA\n"},
		{"ragged last line", &Seq{Name: "s", Sequence: "ACGTA"}, 2, ">s\nAC\nGT\nA\n"},
		{"description", &Seq{Name: "s", Sequence: "AC", Description: "some text"}, 60, ">s some text\nAC\n"},
		{"default wrap", &Seq{Name: "s", Sequence: "AC"}, 0, ">s\nAC\n"},
		{"empty sequence", &Seq{Name: "s"}, 10, ">s\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFASTA(tt.seq, tt.wrap))
		})
	}
}

func TestWriteFASTA(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFASTA(&buf, &Seq{Name: "testname", Sequence: "AAAAAAAA"}, 2))
	assert.Equal(t, ">testname\nAA\nAA\nAA\nAA\n", buf.String())
}
