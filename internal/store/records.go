package store

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/featureio/internal/feature"
)

const recordColumns = `chrom, start_pos, end_pos, name, score, strand,
		cds_start, cds_end, item_rgb, block_count, block_sizes, block_starts, attrs`

// WriteRecords batch-inserts records that belong to no tracked source file.
func (s *Store) WriteRecords(records []*feature.Record) error {
	return s.appendRecords("", records)
}

// appendRecords inserts records using the Appender API, tagging each row with source.
func (s *Store) appendRecords(source string, records []*feature.Record) error {
	if len(records) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "records")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range records {
		attrs, err := encodeAttrs(r.Attrs)
		if err != nil {
			return fmt.Errorf("encode attrs of %s: %w", r.Name, err)
		}
		if err := appender.AppendRow(
			r.Chrom, r.Start, r.End, r.Name, r.Score, r.Strand,
			r.CDSStart, r.CDSEnd, r.ItemRGB, int64(r.BlockCount),
			r.BlockSizesString(), r.BlockStartsString(), attrs, source,
		); err != nil {
			return fmt.Errorf("append record %s: %w", r.Name, err)
		}
	}

	return appender.Flush()
}

// FindOverlapping returns the records on chrom whose [start, end] span
// intersects the query, ordered by start, end and name.
func (s *Store) FindOverlapping(chrom string, start, end int64) ([]*feature.Record, error) {
	rows, err := s.db.Query(`SELECT `+recordColumns+`
		FROM records
		WHERE chrom=? AND start_pos <= ? AND end_pos >= ?
		ORDER BY start_pos, end_pos, name`,
		chrom, end, start)
	if err != nil {
		return nil, fmt.Errorf("query overlapping: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// FindByName returns every record with the given name.
func (s *Store) FindByName(name string) ([]*feature.Record, error) {
	rows, err := s.db.Query(`SELECT `+recordColumns+`
		FROM records
		WHERE name=?
		ORDER BY chrom, start_pos`, name)
	if err != nil {
		return nil, fmt.Errorf("query by name: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Count returns the number of stored records.
func (s *Store) Count() (int64, error) {
	var n int64
	if err := s.db.QueryRow("SELECT count(*) FROM records").Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Clear removes all records and source fingerprints.
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM records"); err != nil {
		return err
	}
	_, err := s.db.Exec("DELETE FROM sources")
	return err
}

// scanRecords rebuilds records from rows, recomputing derived geometry.
func scanRecords(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]*feature.Record, error) {
	var records []*feature.Record
	for rows.Next() {
		var f feature.Fields
		var blockCount int64
		var attrs string

		if err := rows.Scan(
			&f.Chrom, &f.Start, &f.End, &f.Name, &f.Score, &f.Strand,
			&f.CDSStart, &f.CDSEnd, &f.ItemRGB, &blockCount,
			&f.BlockSizes, &f.BlockStarts, &attrs,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		f.BlockCount = int(blockCount)

		var err error
		if f.Attrs, err = decodeAttrs(attrs); err != nil {
			return nil, fmt.Errorf("decode attrs of %s: %w", f.Name, err)
		}

		r, err := feature.New(f)
		if err != nil {
			return nil, fmt.Errorf("rebuild record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func encodeAttrs(attrs map[string]string) (string, error) {
	if len(attrs) == 0 {
		return "", nil
	}
	b, err := json.Marshal(attrs)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeAttrs(s string) (map[string]string, error) {
	if s == "" {
		return nil, nil
	}
	var attrs map[string]string
	if err := json.Unmarshal([]byte(s), &attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}
