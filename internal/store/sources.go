package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/inodb/featureio/internal/feature"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// SourceLoaded reports whether fp was loaded and the file has not changed since.
func (s *Store) SourceLoaded(fp FileFingerprint) (bool, error) {
	var size, modNs int64
	err := s.db.QueryRow("SELECT size, mod_time_ns FROM sources WHERE path=?", fp.Path).Scan(&size, &modNs)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query source %s: %w", fp.Path, err)
	}
	return size == fp.Size && modNs == fp.ModTime.UnixNano(), nil
}

// MarkSource records fp as loaded with n records.
func (s *Store) MarkSource(fp FileFingerprint, n int) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO sources (path, size, mod_time_ns, record_count)
		VALUES (?, ?, ?, ?)`, fp.Path, fp.Size, fp.ModTime.UnixNano(), int64(n))
	if err != nil {
		return fmt.Errorf("mark source %s: %w", fp.Path, err)
	}
	return nil
}

// LoadSource replaces the records previously loaded from fp.Path with records
// and marks the source as current.
func (s *Store) LoadSource(fp FileFingerprint, records []*feature.Record) error {
	if _, err := s.db.Exec("DELETE FROM records WHERE source=?", fp.Path); err != nil {
		return fmt.Errorf("remove stale records of %s: %w", fp.Path, err)
	}
	if err := s.appendRecords(fp.Path, records); err != nil {
		return err
	}
	if err := s.MarkSource(fp, len(records)); err != nil {
		return err
	}
	s.logger.Info("loaded source",
		zap.String("path", fp.Path),
		zap.Int("records", len(records)))
	return nil
}

// Sources returns the fingerprints of all loaded files, ordered by path.
func (s *Store) Sources() ([]FileFingerprint, error) {
	rows, err := s.db.Query("SELECT path, size, mod_time_ns FROM sources ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var out []FileFingerprint
	for rows.Next() {
		var fp FileFingerprint
		var modNs int64
		if err := rows.Scan(&fp.Path, &fp.Size, &modNs); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		fp.ModTime = time.Unix(0, modNs)
		out = append(out, fp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}
	return out, nil
}
