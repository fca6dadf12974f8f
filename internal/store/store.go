// Package store provides the JSON snapshot persistence of an account.
//
// The whole snapshot is rewritten on every save. Loading is best-effort: a missing
// file yields the default snapshot, a corrupt one is logged and ignored.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"fjacquet/expense-manager/internal/fileutils"
	"fjacquet/expense-manager/internal/ledgererror"
	"fjacquet/expense-manager/internal/logging"
	"fjacquet/expense-manager/internal/models"
)

// DefaultFile is the snapshot resource used when none is configured.
const DefaultFile = "data.json"

// Persister loads and saves complete account snapshots.
type Persister interface {
	Load() models.Snapshot
	Save(snapshot models.Snapshot) error
	Path() string
}

// JSONStore persists snapshots as an indented JSON document.
type JSONStore struct {
	path   string
	logger logging.Logger
	mu     sync.Mutex
}

// NewJSONStore creates a store for the file at path.
func NewJSONStore(path string, logger logging.Logger) *JSONStore {
	if path == "" {
		path = DefaultFile
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &JSONStore{
		path:   path,
		logger: logger.WithField(logging.FieldComponent, "store"),
	}
}

// Path returns the snapshot file location.
func (s *JSONStore) Path() string {
	return s.path
}

// Load reads the snapshot. A missing file yields the default snapshot; a file that
// cannot be read or decoded is logged and the default snapshot is returned.
func (s *JSONStore) Load() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := models.DefaultSnapshot()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("No snapshot found, starting from defaults",
				logging.F(logging.FieldFile, s.path))
			return snapshot
		}
		s.logger.WithError(err).Error("Failed to load storage",
			logging.F(logging.FieldFile, s.path))
		return snapshot
	}

	merged, err := MergeSnapshot(snapshot, data)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load storage",
			logging.F(logging.FieldFile, s.path))
		return snapshot
	}

	s.logger.Debug("Snapshot loaded",
		logging.F(logging.FieldFile, s.path),
		logging.F(logging.FieldCount, len(merged.Records)))
	return merged
}

// Save serializes snapshot over the file. Failures are logged and returned as
// *ledgererror.PersistError.
func (s *JSONStore) Save(snapshot models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := Encode(snapshot)
	if err == nil {
		err = fileutils.WriteFileAtomic(s.path, data, models.PermissionDataFile)
	}
	if err != nil {
		s.logger.WithError(err).Error("Failed to save storage",
			logging.F(logging.FieldFile, s.path))
		return &ledgererror.PersistError{Path: s.path, Err: err}
	}
	return nil
}

// MergeSnapshot shallowly merges a JSON document over base: every known top-level
// key present in data replaces the corresponding part of base entirely, absent keys
// keep base's value. A present "settings" object therefore replaces the base
// settings as a whole; fields it omits are zero.
// Nothing is merged unless the whole document decodes.
func MergeSnapshot(base models.Snapshot, data []byte) (models.Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return base, fmt.Errorf("error parsing snapshot: %w", err)
	}

	merged := base.Clone()
	if v, ok := raw[models.KeyRecords]; ok {
		var records []models.Record
		if err := json.Unmarshal(v, &records); err != nil {
			return base, fmt.Errorf("error parsing %s: %w", models.KeyRecords, err)
		}
		merged.Records = nonNilRecords(records)
	}
	if v, ok := raw[models.KeyLoans]; ok {
		var loans []models.LoanRecord
		if err := json.Unmarshal(v, &loans); err != nil {
			return base, fmt.Errorf("error parsing %s: %w", models.KeyLoans, err)
		}
		if loans == nil {
			loans = []models.LoanRecord{}
		}
		merged.Loans = loans
	}
	if v, ok := raw[models.KeySettings]; ok {
		var settings models.Settings
		if err := json.Unmarshal(v, &settings); err != nil {
			return base, fmt.Errorf("error parsing %s: %w", models.KeySettings, err)
		}
		merged.Settings = settings
	}
	if v, ok := raw[models.KeyOverconsumptionCategories]; ok {
		var categories []string
		if err := json.Unmarshal(v, &categories); err != nil {
			return base, fmt.Errorf("error parsing %s: %w", models.KeyOverconsumptionCategories, err)
		}
		if categories == nil {
			categories = []string{}
		}
		merged.OverconsumptionCategories = categories
	}

	return merged, nil
}

// Encode renders v as two-space indented JSON without HTML escaping.
func Encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("error encoding snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

func nonNilRecords(records []models.Record) []models.Record {
	if records == nil {
		return []models.Record{}
	}
	return records
}
