package format

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/featureio/internal/feature"
)

var errWriteFailed = errors.New("write failed")

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errWriteFailed }

func tsv(fields ...string) string {
	return strings.Join(fields, "\t")
}

func codingRecord(t *testing.T, strand string) *feature.Record {
	t.Helper()
	r, err := feature.New(feature.Fields{
		Chrom:       "chr1",
		Start:       100,
		End:         300,
		Name:        "tx1",
		Strand:      strand,
		CDSStart:    120,
		CDSEnd:      280,
		ItemRGB:     "0",
		BlockCount:  2,
		BlockSizes:  "50,50",
		BlockStarts: "0,150",
	})
	require.NoError(t, err)
	return r
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"augustusgtf", "bed12", "blatpsl", "psl"}, Readers())
	assert.Equal(t, []string{"augustus_exon_hints", "bed12", "gff3"}, Writers())

	r, err := NewReader("BED12", strings.NewReader(""))
	require.NoError(t, err)
	assert.IsType(t, &BED12Reader{}, r)

	_, err = NewReader("genbank", strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format genbank")

	w, err := NewWriter("gff3", &bytes.Buffer{})
	require.NoError(t, err)
	assert.IsType(t, &GFF3Writer{}, w)

	_, err = NewWriter("gtf", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestBED12Reader(t *testing.T) {
	input := strings.Join([]string{
		"# comment",
		"",
		tsv("chr1", "100", "300", "tx1", "0", "+", "120", "280", "0", "2", "50,50,", "0,150,"),
		tsv("chr2", "10", "20", "tx2", "5", "-", "0", "0", "255,0,0", "1", "10", "0"),
	}, "\n") + "\n"

	r := NewBED12Reader(strings.NewReader(input))
	records, err := ReadAll(r)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 4, r.LineNumber())

	tx1 := records[0]
	assert.Equal(t, "tx1", tx1.Name)
	assert.Equal(t, []feature.Interval{{Start: 100, End: 150}, {Start: 250, End: 300}}, tx1.Exons)
	assert.Equal(t, []feature.Interval{{Start: 120, End: 150}, {Start: 250, End: 280}}, tx1.CDSExons)

	tx2 := records[1]
	assert.False(t, tx2.IsCoding())
	assert.Equal(t, "255,0,0", tx2.ItemRGB)
}

func TestBED12Reader_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"too few fields", tsv("chr1", "100", "300") + "\n", "incorrect number of fields"},
		{"bad integer", tsv("chr1", "x", "300", "tx1", "0", "+", "0", "0", "0", "1", "10", "0") + "\n", "field 2"},
		{"block mismatch", tsv("chr1", "0", "300", "tx1", "0", "+", "0", "0", "0", "2", "10", "0") + "\n", "block count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBED12Reader(strings.NewReader(tt.input)).Next()
			require.Error(t, err)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, 1, pe.Line)
			assert.Contains(t, pe.Message, tt.msg)
		})
	}
}

func TestBED12_RoundTrip(t *testing.T) {
	line := tsv("chr1", "100", "300", "tx1", "0", "+", "120", "280", "0", "2", "50,50", "0,150")

	records, err := ReadAll(NewBED12Reader(strings.NewReader(line + "\n")))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteAll(NewBED12Writer(&buf), records))
	assert.Equal(t, line+"\n", buf.String())
}

const pslLine = "59\t0\t0\t0\t0\t0\t1\t100\t+\tquery1\t59\t0\t59\tchr2\t5000\t1000\t1159\t2\t30,29,\t0,30,\t1000,1130,"

func TestPSLReader(t *testing.T) {
	r := NewPSLReader(strings.NewReader(pslLine+"\n"), false)
	rec, err := r.Next()
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, "chr2", rec.Chrom)
	assert.Equal(t, "query1", rec.Name)
	assert.Equal(t, int64(59), rec.Score)
	assert.Equal(t, []int64{0, 130}, rec.BlockStarts)
	assert.Equal(t, []feature.Interval{{Start: 1000, End: 1030}, {Start: 1130, End: 1159}}, rec.Exons)
	assert.False(t, rec.IsCoding())

	rec, err = r.Next()
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestPSLReader_BLATHeader(t *testing.T) {
	input := strings.Join([]string{
		"psLayout version 3",
		"",
		"match\tmis-\trep.\tN's\tQ gap",
		"     \tmatch\tmatch\t   \tcount",
		"---------------------------------------------------------------",
		pslLine,
	}, "\n") + "\n"

	r, err := NewReader("blatpsl", strings.NewReader(input))
	require.NoError(t, err)
	records, err := ReadAll(r)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "query1", records[0].Name)
}

func TestPSLReader_WrongColumnCount(t *testing.T) {
	_, err := NewPSLReader(strings.NewReader("1 2 3\n"), false).Next()
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "psl", pe.Format)
}

const augustusOutput = `# This output was generated with AUGUSTUS (version 3.3).
# ----- prediction on sequence number 1 (length = 1000, name = chr1) -----
#
# Predicted genes for sequence number 1 on both strands
# start gene g1
chr1	AUGUSTUS	gene	100	400	0.5	+	.	g1
chr1	AUGUSTUS	transcript	100	400	0.5	+	.	g1.t1
chr1	AUGUSTUS	start_codon	150	152	.	+	0	transcript_id "g1.t1"; gene_id "g1";
chr1	AUGUSTUS	exon	100	200	.	+	.	transcript_id "g1.t1"; gene_id "g1";
chr1	AUGUSTUS	CDS	150	200	0.9	+	0	transcript_id "g1.t1"; gene_id "g1";
chr1	AUGUSTUS	exon	300	400	.	+	.	transcript_id "g1.t1"; gene_id "g1";
chr1	AUGUSTUS	CDS	300	350	0.9	+	2	transcript_id "g1.t1"; gene_id "g1";
# protein sequence = [MSTNPKPQRK
# TKRNTNRRPQ
# DVKFPGG]
# end gene g1
###
# start gene g2
chr1	AUGUSTUS	gene	500	600	0.3	-	.	g2
chr1	AUGUSTUS	transcript	500	600	0.3	-	.	g2.t1
chr1	AUGUSTUS	exon	500	600	.	-	.	transcript_id "g2.t1"; gene_id "g2";
# end gene g2
###
`

func TestAugustusGTFReader(t *testing.T) {
	records, err := ReadAll(NewAugustusGTFReader(strings.NewReader(augustusOutput)))
	require.NoError(t, err)
	require.Len(t, records, 2)

	g1 := records[0]
	assert.Equal(t, "g1.t1", g1.Name)
	assert.Equal(t, "chr1", g1.Chrom)
	assert.Equal(t, "+", g1.Strand)
	assert.Equal(t, []feature.Interval{{Start: 100, End: 200}, {Start: 300, End: 400}}, g1.Exons)
	assert.Equal(t, int64(150), g1.CDSStart)
	assert.Equal(t, int64(350), g1.CDSEnd)
	assert.Equal(t, []feature.Interval{{Start: 150, End: 200}, {Start: 300, End: 350}}, g1.CDSExons)
	assert.Equal(t, "MSTNPKPQRKTKRNTNRRPQDVKFPGG", g1.Attrs[AttrProtein])
	assert.Equal(t, "g1", g1.Attrs[AttrGeneID])

	g2 := records[1]
	assert.Equal(t, "g2.t1", g2.Name)
	assert.False(t, g2.IsCoding())
	assert.Equal(t, []feature.Interval{{Start: 500, End: 600}}, g2.Exons)
	assert.NotContains(t, g2.Attrs, AttrProtein)
}

func TestAugustusGTFReader_ConsecutiveTranscripts(t *testing.T) {
	input := strings.Join([]string{
		"# start gene g1",
		tsv("chr1", "AUGUSTUS", "transcript", "10", "20", ".", "+", ".", "g1.t1"),
		tsv("chr1", "AUGUSTUS", "exon", "10", "20", ".", "+", ".", `transcript_id "g1.t1"; gene_id "g1";`),
		tsv("chr1", "AUGUSTUS", "transcript", "10", "30", ".", "+", ".", "g1.t2"),
		tsv("chr1", "AUGUSTUS", "exon", "10", "30", ".", "+", ".", `transcript_id "g1.t2"; gene_id "g1";`),
	}, "\n") + "\n"

	records, err := ReadAll(NewAugustusGTFReader(strings.NewReader(input)))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "g1.t1", records[0].Name)
	assert.Equal(t, "g1.t2", records[1].Name)
	assert.Equal(t, []feature.Interval{{Start: 10, End: 30}}, records[1].Exons)
}

func TestAugustusGTFReader_BadCoordinate(t *testing.T) {
	input := "# start gene g1\n" + tsv("chr1", "AUGUSTUS", "transcript", "x", "20", ".", "+", ".", "g1.t1") + "\n"

	_, err := NewAugustusGTFReader(strings.NewReader(input)).Next()
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Line)
}

func TestProteinChunk(t *testing.T) {
	assert.Equal(t, "MSTN", proteinChunk("# protein sequence = [MSTN"))
	assert.Equal(t, "KRNT", proteinChunk("# KRNT"))
	assert.Equal(t, "GG", proteinChunk("# GG]"))
	assert.Equal(t, "MA", proteinChunk("# protein sequence = [MA]"))
	assert.Equal(t, "", proteinChunk("#"))
}

func TestGFF3Writer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAll(NewGFF3Writer(&buf, ""), []*feature.Record{codingRecord(t, "+")}))

	want := strings.Join([]string{
		"##gff-version 3",
		tsv("chr1", "featureio", "gene", "100", "300", ".", "+", ".", "ID=tx1;Name=tx1"),
		tsv("chr1", "featureio", "mRNA", "100", "300", ".", "+", ".", "ID=tx1.mRNA.1;Parent=tx1"),
		tsv("chr1", "featureio", "exon", "100", "150", ".", "+", ".", "ID=tx1.exon.0;Parent=tx1.mRNA.1"),
		tsv("chr1", "featureio", "exon", "250", "300", ".", "+", ".", "ID=tx1.exon.1;Parent=tx1.mRNA.1"),
		tsv("chr1", "featureio", "CDS", "120", "150", ".", "+", "0", "ID=tx1.CDS.0;Parent=tx1.mRNA.1"),
		tsv("chr1", "featureio", "CDS", "250", "280", ".", "+", "0", "ID=tx1.CDS.1;Parent=tx1.mRNA.1"),
	}, "\n") + "\n"
	assert.Equal(t, want, buf.String())
}

// cdsPhases writes r as GFF3 and returns its CDS lines as "start-end:phase".
func cdsPhases(t *testing.T, r *feature.Record) []string {
	t.Helper()
	var buf bytes.Buffer
	w := NewGFF3Writer(&buf, "test")
	require.NoError(t, w.Write(r))
	require.NoError(t, w.Flush())

	var cds []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		f := strings.Split(line, "\t")
		if f[2] == "CDS" {
			cds = append(cds, f[3]+"-"+f[4]+":"+f[7])
		}
	}
	return cds
}

func TestGFF3Writer_MinusStrandPhase(t *testing.T) {
	assert.Equal(t, []string{"250-280:0", "120-150:0"}, cdsPhases(t, codingRecord(t, "-")))
}

func TestGFF3Writer_PhaseFromBlockSize(t *testing.T) {
	tests := []struct {
		strand string
		want   []string
	}{
		{"+", []string{"0-4:0", "10-14:2"}},
		{"-", []string{"10-14:0", "0-4:2"}},
	}
	for _, tt := range tests {
		t.Run(tt.strand, func(t *testing.T) {
			r, err := feature.New(feature.Fields{
				Chrom:       "chr1",
				Start:       0,
				End:         14,
				Name:        "short",
				Strand:      tt.strand,
				CDSStart:    0,
				CDSEnd:      14,
				ItemRGB:     "0",
				BlockCount:  2,
				BlockSizes:  "4,4",
				BlockStarts: "0,10",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, cdsPhases(t, r))
		})
	}
}

func TestGFF3Writer_WriteError(t *testing.T) {
	w := NewGFF3Writer(failingWriter{}, "")
	// A record larger than the buffer forces a write through to the failing writer.
	r := codingRecord(t, "+").Modified(func(r *feature.Record) {
		r.Attrs = map[string]string{"note": strings.Repeat("x", 8192)}
	})
	assert.ErrorIs(t, w.Write(r), errWriteFailed)
}

func TestGFF3Writer_ExtraAttributes(t *testing.T) {
	r := codingRecord(t, "+").Modified(func(r *feature.Record) {
		r.Attrs = map[string]string{"gene_id": "g1", "ID": "ignored"}
	})

	var buf bytes.Buffer
	w := NewGFF3Writer(&buf, "")
	require.NoError(t, w.Write(r))
	require.NoError(t, w.Flush())

	first := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.True(t, strings.HasSuffix(first, "\tID=tx1;Name=tx1;gene_id=g1"))
}

func TestNextPhase(t *testing.T) {
	tests := []struct {
		n, phase, want int64
	}{
		{3, 0, 0},
		{4, 0, 2},
		{5, 0, 1},
		{30, 0, 0},
		{31, 0, 2},
		{31, 2, 1},
		{1, 2, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, nextPhase(tt.n, tt.phase), "n=%d phase=%d", tt.n, tt.phase)
	}
}

func TestExonHintWriter(t *testing.T) {
	rec := codingRecord(t, "+")

	t.Run("cds exons", func(t *testing.T) {
		var buf bytes.Buffer
		w, err := NewWriter("augustus_exon_hints", &buf)
		require.NoError(t, err)
		require.NoError(t, WriteAll(w, []*feature.Record{rec}))

		assert.Equal(t,
			tsv("chr1", "featureio", "exon", "120", "150", ".", "+", ".", "grp=tx1;pri=4;src=E")+"\n"+
				tsv("chr1", "featureio", "exon", "250", "280", ".", "+", ".", "grp=tx1;pri=4;src=E")+"\n",
			buf.String())
	})

	t.Run("all exons", func(t *testing.T) {
		opts := DefaultExonHintOptions()
		opts.CDSOnly = false
		opts.Priority = 5
		opts.AugustusSource = "M"

		var buf bytes.Buffer
		w := NewExonHintWriter(&buf, opts)
		require.NoError(t, w.Write(rec))
		require.NoError(t, w.Flush())

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], "\t100\t150\t")
		assert.True(t, strings.HasSuffix(lines[1], "grp=tx1;pri=5;src=M"))
	})
}

func TestByName(t *testing.T) {
	a := codingRecord(t, "+")
	b := codingRecord(t, "-")
	m := ByName([]*feature.Record{a, b})
	require.Len(t, m, 1)
	assert.Same(t, b, m["tx1"])
}
