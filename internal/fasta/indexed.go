package fasta

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"

	"github.com/biogo/hts/fai"
	"go.uber.org/zap"
)

// IndexSuffix is appended to a FASTA path to locate its index.
const IndexSuffix = ".fai"

// backscanWindow is the number of bytes read per step when searching back for a header.
const backscanWindow = 512

// Option configures an IndexedFasta.
type Option func(*options)

type options struct {
	logger *zap.Logger
	shared bool
}

// WithLogger sets the logger for lookup diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithSharedHandle keeps one file handle open for all lookups instead of opening
// the file on every call. Reads use ReadAt, so concurrent lookups stay independent.
// The caller must Close the IndexedFasta.
func WithSharedHandle() Option {
	return func(o *options) {
		o.shared = true
	}
}

// handleSource yields a readable handle onto the sequence file for one lookup.
type handleSource interface {
	acquire() (io.ReaderAt, func() error, error)
	Close() error
}

// reopenSource opens the file for each lookup and closes it afterwards.
type reopenSource struct {
	path string
}

func (s reopenSource) acquire() (io.ReaderAt, func() error, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, nil, fmt.Errorf("open fasta file: %w", err)
	}
	return f, f.Close, nil
}

func (s reopenSource) Close() error { return nil }

// sharedSource serves every lookup from a single open file.
type sharedSource struct {
	f *os.File
}

func (s *sharedSource) acquire() (io.ReaderAt, func() error, error) {
	return s.f, func() error { return nil }, nil
}

func (s *sharedSource) Close() error {
	return s.f.Close()
}

// IndexedFasta gives random access to the records of a FASTA file through its
// .fai index without loading sequence data into memory.
type IndexedFasta struct {
	path      string
	indexPath string
	index     fai.Index
	names     []string // index order
	src       handleSource
	logger    *zap.Logger
}

// Open loads the index at path+".fai". Both files must exist and every sequence
// name in the index must be unique.
func Open(path string, opts ...Option) (*IndexedFasta, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	indexPath := path + IndexSuffix
	if err := requireFile(path); err != nil {
		return nil, fmt.Errorf("%w: %s does not exist", ErrMissingFile, path)
	}
	if err := requireFile(indexPath); err != nil {
		return nil, fmt.Errorf("%w: no %s found, indexed fasta files require an index (see samtools faidx)",
			ErrMissingFile, indexPath)
	}

	f, err := os.Open(indexPath)
	if err != nil {
		return nil, fmt.Errorf("open fasta index: %w", err)
	}
	defer f.Close()

	records, err := readIndex(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", indexPath, err)
	}

	idx := &IndexedFasta{
		path:      path,
		indexPath: indexPath,
		index:     make(fai.Index, len(records)),
		names:     make([]string, 0, len(records)),
		logger:    o.logger,
	}
	for _, rec := range records {
		idx.index[rec.Name] = rec
		idx.names = append(idx.names, rec.Name)
	}

	if o.shared {
		sf, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open fasta file: %w", err)
		}
		idx.src = &sharedSource{f: sf}
	} else {
		idx.src = reopenSource{path: path}
	}

	idx.logger.Debug("loaded fasta index",
		zap.String("path", path),
		zap.Int("sequences", len(idx.names)))

	return idx, nil
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fs.ErrNotExist
	}
	return nil
}

// Close releases the shared file handle, if any.
func (f *IndexedFasta) Close() error {
	return f.src.Close()
}

// Path returns the FASTA file path.
func (f *IndexedFasta) Path() string {
	return f.path
}

// IndexPath returns the index file path.
func (f *IndexedFasta) IndexPath() string {
	return f.indexPath
}

// Len returns the number of indexed sequences.
func (f *IndexedFasta) Len() int {
	return len(f.names)
}

// Contains reports whether name is indexed.
func (f *IndexedFasta) Contains(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Sequences returns all sequence names in index order.
func (f *IndexedFasta) Sequences() []string {
	return append([]string(nil), f.names...)
}

// Record returns the index entry for name.
func (f *IndexedFasta) Record(name string) (IndexRecord, bool) {
	rec, ok := f.index[name]
	if !ok {
		return IndexRecord{}, false
	}
	return newIndexRecord(rec), true
}

// Get retrieves the full record for name, including its header description.
// The index offset points at the first residue, so the header is located by
// scanning backwards from there before the record is parsed.
func (f *IndexedFasta) Get(name string) (*Seq, error) {
	rec, ok := f.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: no such sequence %s in %s", ErrNotFound, name, f.path)
	}

	ra, release, err := f.src.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	start, err := findHeader(ra, rec.Start)
	if err != nil {
		return nil, fmt.Errorf("locate header of %s in %s: %w", name, f.path, err)
	}

	sr := io.NewSectionReader(ra, start, math.MaxInt64-start)
	seq, err := ParseRecord(bufio.NewReader(sr))
	if err != nil {
		return nil, fmt.Errorf("parse %s in %s: %w", name, f.path, err)
	}

	f.logger.Debug("read fasta record",
		zap.String("name", name),
		zap.Int64("offset", rec.Start),
		zap.Int64("header_offset", start),
		zap.Int("length", seq.Len()))
	if seq.Name != name {
		f.logger.Warn("fasta header does not match index name",
			zap.String("index_name", name),
			zap.String("header_name", seq.Name),
			zap.String("path", f.path))
	}

	return seq, nil
}

// Fetch returns the residues of name between 1-based inclusive start and end,
// clamped to the sequence. Only the lines covering the region are read.
func (f *IndexedFasta) Fetch(name string, start, end int64) (string, error) {
	rec, ok := f.index[name]
	if !ok {
		return "", fmt.Errorf("%w: no such sequence %s in %s", ErrNotFound, name, f.path)
	}

	lo := max(start, 1) - 1
	hi := min(end, int64(rec.Length))
	if lo >= hi {
		return "", nil
	}

	ra, release, err := f.src.acquire()
	if err != nil {
		return "", err
	}
	defer release()

	seq, err := fai.NewFile(ra, f.index).SeqRange(name, int(lo), int(hi))
	if err != nil {
		return "", fmt.Errorf("read %s:%d-%d from %s: %w", name, start, end, f.path, err)
	}
	buf, err := io.ReadAll(seq)
	if err != nil {
		return "", fmt.Errorf("read %s:%d-%d from %s: %w", name, start, end, f.path, err)
	}

	out := buf[:0]
	for _, c := range buf {
		if !isSpace(c) {
			out = append(out, c)
		}
	}
	if int64(len(out)) != hi-lo {
		return "", fmt.Errorf("read %s:%d-%d from %s: got %d residues, expected %d (index out of date?)",
			name, start, end, f.path, len(out), hi-lo)
	}
	return string(out), nil
}

// findHeader returns the offset of the header marker that begins the line
// containing, or preceding, offset.
func findHeader(ra io.ReaderAt, offset int64) (int64, error) {
	buf := make([]byte, backscanWindow+1)
	hi := offset + 1
	for hi > 0 {
		lo := max(hi-backscanWindow, 0)
		// One extra byte before lo lets the line-start check see the previous byte.
		from := max(lo-1, 0)
		n, err := ra.ReadAt(buf[:hi-from], from)
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("read fasta file: %w", err)
		}
		for p := hi - 1; p >= lo; p-- {
			i := p - from
			if i >= int64(n) {
				continue
			}
			if buf[i] == headerMarker && (p == 0 || buf[i-1] == '\n') {
				return p, nil
			}
		}
		hi = lo
	}
	return 0, ErrHeaderNotFound
}
