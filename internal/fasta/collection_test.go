package fasta

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectionFiles(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	a := writeIndexed(t, dir, "random.fa", 60,
		&Seq{Name: "seq1", Sequence: "ACGTACGT"},
		&Seq{Name: "seq2", Sequence: "GGGG"},
	)
	b := writeIndexed(t, dir, "genomic.fna", 60,
		&Seq{Name: "NZ_BBIY01000160.1", Sequence: "TTTTAAAACCCC", Description: "contig 160"},
	)
	return a, b
}

func TestOpenCollection(t *testing.T) {
	a, b := collectionFiles(t)

	c, err := OpenCollection([]string{b, a})
	require.NoError(t, err)
	defer c.Close()

	fa, err := Open(a)
	require.NoError(t, err)
	fb, err := Open(b)
	require.NoError(t, err)

	assert.ElementsMatch(t, append(fa.Sequences(), fb.Sequences()...), c.Keys())
	assert.Equal(t, 3, c.Len())
	assert.Len(t, c.Files(), 2)
	assert.True(t, c.Contains("seq1"))
	assert.True(t, c.Contains("NZ_BBIY01000160.1"))
	assert.False(t, c.Contains("idontexist"))
}

func TestCollection_Get(t *testing.T) {
	a, b := collectionFiles(t)
	c, err := OpenCollection([]string{a, b})
	require.NoError(t, err)

	seq, err := c.Get("seq1")
	require.NoError(t, err)
	assert.Equal(t, "seq1", seq.Name)

	seq, err = c.Get("NZ_BBIY01000160.1")
	require.NoError(t, err)
	assert.Equal(t, "contig 160", seq.Description)
	assert.Equal(t, "AAAACC", seq.Slice(4, 10))

	region, err := c.Fetch("NZ_BBIY01000160.1", 5, 10)
	require.NoError(t, err)
	assert.Equal(t, "AAAACC", region)

	_, err = c.Get("idontexist")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.Fetch("idontexist", 1, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenCollection_Collision(t *testing.T) {
	a, _ := collectionFiles(t)

	_, err := OpenCollection([]string{a, a})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.Contains(t, err.Error(), "key collision")
	assert.Contains(t, err.Error(), "seq1")
}

func TestOpenCollection_MissingMember(t *testing.T) {
	a, _ := collectionFiles(t)

	_, err := OpenCollection([]string{a, filepath.Join(t.TempDir(), "missing.fa")}, WithSharedHandle())
	assert.ErrorIs(t, err, ErrMissingFile)
}
