// Package store persists per-series-per-year snapshot files and the
// cross-series update ledger. Writes are atomic (temp file + rename) and
// partitioned by series+year path, so concurrent series pipelines never
// race on a file.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	appLog "motorsportcal/internal/log"
	"motorsportcal/internal/model"
)

const ledgerFile = "info.json"

// Store reads and writes calendar data below a base directory.
type Store struct {
	dir string
}

// New creates a store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// SnapshotPath returns the snapshot file path for one series and year.
func (s *Store) SnapshotPath(series model.Series, year int) string {
	return filepath.Join(s.dir, string(series), fmt.Sprintf("%d.json", year))
}

// ReadSnapshot loads the stored snapshot for series+year. It returns both
// the decoded events and the raw bytes (the merge engine compares bytes).
// A missing file is the normal first-run case and yields (nil, nil, nil).
func (s *Store) ReadSnapshot(series model.Series, year int) ([]model.Event, []byte, error) {
	data, err := os.ReadFile(s.SnapshotPath(series, year))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	events, err := model.DecodeSnapshot(data)
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot %s/%d: %w", series, year, err)
	}
	return events, data, nil
}

// WriteSnapshot stores the canonical serialized snapshot for series+year.
func (s *Store) WriteSnapshot(series model.Series, year int, data []byte) error {
	path := s.SnapshotPath(series, year)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return writeAtomic(path, data)
}

// ReadLedger loads the update ledger. A missing or unreadable ledger is
// replaced by a fresh one stamped at now, matching first-run behavior.
func (s *Store) ReadLedger(now time.Time) *model.Ledger {
	data, err := os.ReadFile(filepath.Join(s.dir, ledgerFile))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			appLog.Error("ledger read failed, starting fresh", err)
		}
		return model.NewLedger(now)
	}
	ledger, err := model.DecodeLedger(data)
	if err != nil {
		appLog.Error("ledger decode failed, starting fresh", err)
		return model.NewLedger(now)
	}
	return ledger
}

// WriteLedger stores the update ledger.
func (s *Store) WriteLedger(ledger *model.Ledger) error {
	data, err := model.EncodeLedger(ledger)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(s.dir, ledgerFile), data)
}

// writeAtomic writes data via a temp file + rename in the target
// directory so readers never observe a partial file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
