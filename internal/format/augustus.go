package format

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/featureio/internal/feature"
)

// Attribute keys set on records read from AUGUSTUS output.
const (
	AttrProtein = "seq"
	AttrGeneID  = "gene_id"
)

// AugustusGTFReader reads transcript models from AUGUSTUS GTF output.
// Each transcript becomes one record with its exons as blocks, the CDS span
// as thick coordinates and the predicted protein in the "seq" attribute.
type AugustusGTFReader struct {
	lr      lineReader
	started bool
	pending *augustusTranscript
}

type augustusTranscript struct {
	chrom, strand, id string
	start, end        int64
	cdsStart, cdsEnd  int64
	geneID            string
	blockStarts       []string
	blockSizes        []string
	protein           strings.Builder
	inProtein         bool
}

// NewAugustusGTFReader creates a reader over AUGUSTUS GTF output.
func NewAugustusGTFReader(r io.Reader) *AugustusGTFReader {
	return &AugustusGTFReader{lr: lineReader{br: bufio.NewReader(r)}}
}

// Next reads the next transcript.
// Returns nil, nil when there are no more transcripts.
func (p *AugustusGTFReader) Next() (*feature.Record, error) {
	for {
		line, err := p.lr.readLine()
		if err == io.EOF {
			if p.pending != nil {
				return p.emit()
			}
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read augustus gtf: %w", err)
		}

		if !p.started {
			p.started = strings.HasPrefix(line, "# start gene")
			continue
		}

		if t := p.pending; t != nil && (t.inProtein || strings.HasPrefix(line, "# protein sequence")) {
			t.inProtein = true
			t.protein.WriteString(proteinChunk(line))
			if strings.Contains(line, "]") {
				return p.emit()
			}
			continue
		}

		if strings.HasPrefix(line, "#") {
			if strings.HasPrefix(line, "# end gene") && p.pending != nil {
				return p.emit()
			}
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 9 {
			continue
		}

		start, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			return nil, p.parseError("invalid start: " + fields[3])
		}
		end, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			return nil, p.parseError("invalid end: " + fields[4])
		}

		switch fields[2] {
		case "transcript":
			next := &augustusTranscript{
				chrom:  fields[0],
				start:  start,
				end:    end,
				strand: fields[6],
				id:     strings.TrimSpace(fields[len(fields)-1]),
			}
			if p.pending != nil {
				rec, err := p.emit()
				p.pending = next
				return rec, err
			}
			p.pending = next
		case "exon":
			if t := p.pending; t != nil {
				t.setGeneID(fields[8])
				t.blockStarts = append(t.blockStarts, strconv.FormatInt(start-t.start, 10))
				t.blockSizes = append(t.blockSizes, strconv.FormatInt(end-start, 10))
			}
		case "CDS":
			if t := p.pending; t != nil {
				t.setGeneID(fields[8])
				if t.cdsStart == 0 || start < t.cdsStart {
					t.cdsStart = start
				}
				if end > t.cdsEnd {
					t.cdsEnd = end
				}
			}
		}
	}
}

// LineNumber returns the current line number.
func (p *AugustusGTFReader) LineNumber() int {
	return p.lr.lineNumber
}

// emit builds a record from the pending transcript and clears it.
func (p *AugustusGTFReader) emit() (*feature.Record, error) {
	t := p.pending
	p.pending = nil

	attrs := map[string]string{}
	if t.geneID != "" {
		attrs[AttrGeneID] = t.geneID
	}
	if t.protein.Len() > 0 {
		attrs[AttrProtein] = t.protein.String()
	}

	rec, err := feature.New(feature.Fields{
		Chrom:       t.chrom,
		Start:       t.start,
		End:         t.end,
		Name:        t.id,
		Strand:      t.strand,
		CDSStart:    t.cdsStart,
		CDSEnd:      t.cdsEnd,
		ItemRGB:     "0",
		BlockCount:  len(t.blockStarts),
		BlockSizes:  strings.Join(t.blockSizes, ","),
		BlockStarts: strings.Join(t.blockStarts, ","),
		Attrs:       attrs,
	})
	if err != nil {
		return nil, p.parseError(err.Error())
	}
	return rec, nil
}

func (p *AugustusGTFReader) parseError(msg string) error {
	return &ParseError{Format: "augustusgtf", Line: p.lr.lineNumber, Message: msg}
}

func (t *augustusTranscript) setGeneID(attrStr string) {
	if id := parseAttributes(attrStr)[AttrGeneID]; id != "" {
		t.geneID = id
	}
}

// proteinChunk returns the residues on a protein comment line, which are
// bracketed on the first and last lines and prefixed by "# " in between.
func proteinChunk(line string) string {
	from := 2
	if i := strings.IndexByte(line, '['); i >= 0 {
		from = i + 1
	}
	to := len(line)
	if i := strings.IndexByte(line, ']'); i >= 0 {
		to = i
	}
	if from > to {
		return ""
	}
	return strings.TrimSpace(line[from:to])
}

// parseAttributes parses the GTF attribute column into key/value pairs.
func parseAttributes(attrStr string) map[string]string {
	attrs := make(map[string]string)
	for _, part := range strings.Split(attrStr, ";") {
		part = strings.TrimSpace(part)
		key, value, ok := strings.Cut(part, " ")
		if !ok {
			continue
		}
		attrs[key] = strings.Trim(strings.TrimSpace(value), "\"")
	}
	return attrs
}
