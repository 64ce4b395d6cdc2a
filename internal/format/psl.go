package format

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/featureio/internal/feature"
)

const (
	pslFieldCount = 21
	blatHeaderRows = 5
)

// PSL column positions used to build a record.
const (
	pslMatches    = 0
	pslStrand     = 8
	pslQName      = 9
	pslTName      = 13
	pslTStart     = 15
	pslTEnd       = 16
	pslBlockCount = 17
	pslBlockSizes = 18
	pslTStarts    = 20
)

// PSLReader reads PSL alignments as feature records on the target sequence.
// The match count becomes the score and block starts are re-based to tStart.
type PSLReader struct {
	lr         lineReader
	skipHeader bool
}

// NewPSLReader creates a PSL reader. With skipHeader set the five-line header
// written by BLAT is discarded.
func NewPSLReader(r io.Reader, skipHeader bool) *PSLReader {
	return &PSLReader{lr: lineReader{br: bufio.NewReader(r)}, skipHeader: skipHeader}
}

// Next reads the next alignment.
// Returns nil, nil when there are no more alignments.
func (p *PSLReader) Next() (*feature.Record, error) {
	for {
		line, err := p.lr.readLine()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read psl: %w", err)
		}
		if p.skipHeader && p.lr.lineNumber <= blatHeaderRows {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != pslFieldCount {
			return nil, &ParseError{
				Format:  "psl",
				Line:    p.lr.lineNumber,
				Message: fmt.Sprintf("expected %d columns, found %d", pslFieldCount, len(fields)),
			}
		}

		rec, err := p.parseFields(fields)
		if err != nil {
			return nil, &ParseError{Format: "psl", Line: p.lr.lineNumber, Message: err.Error()}
		}
		return rec, nil
	}
}

func (p *PSLReader) parseFields(fields []string) (*feature.Record, error) {
	ints := make(map[int]int64, 4)
	for _, i := range []int{pslMatches, pslTStart, pslTEnd, pslBlockCount} {
		v, err := strconv.ParseInt(fields[i], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		ints[i] = v
	}

	start := ints[pslTStart]
	var starts []string
	for _, s := range strings.Split(fields[pslTStarts], ",") {
		if s == "" {
			continue
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("tStarts: %w", err)
		}
		starts = append(starts, strconv.FormatInt(v-start, 10))
	}

	return feature.New(feature.Fields{
		Chrom:       fields[pslTName],
		Start:       start,
		End:         ints[pslTEnd],
		Name:        fields[pslQName],
		Score:       ints[pslMatches],
		Strand:      fields[pslStrand],
		ItemRGB:     "0",
		BlockCount:  int(ints[pslBlockCount]),
		BlockSizes:  fields[pslBlockSizes],
		BlockStarts: strings.Join(starts, ","),
	})
}

// LineNumber returns the current line number.
func (p *PSLReader) LineNumber() int {
	return p.lr.lineNumber
}
