package account

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"fjacquet/expense-manager/internal/dateutils"
	"fjacquet/expense-manager/internal/fileutils"
	"fjacquet/expense-manager/internal/ledgererror"
	"fjacquet/expense-manager/internal/logging"
	"fjacquet/expense-manager/internal/models"
	"fjacquet/expense-manager/internal/store"
	"fjacquet/expense-manager/internal/validation"
)

// backupPrefix names auto-generated backup files: backup_expense_YYYYMMDD_HHMMSS.json
const backupPrefix = "backup_expense_"

var requiredBackupKeys = []string{models.KeyRecords, models.KeyLoans, models.KeySettings}

// document is a decoded restore or import payload. Nil fields were absent.
type document struct {
	records    []models.Record
	loans      []models.LoanRecord
	settings   json.RawMessage
	categories []string
	hasRecords bool
	hasLoans   bool
	hasCats    bool
}

func backupName(now time.Time) string {
	return backupPrefix + now.Format(dateutils.BackupStampLayout) + ".json"
}

// CreateBackup writes the complete state plus backup_time and version to path.
// An empty path writes an auto-named file into the backup directory. It returns
// the path written.
func (a *Account) CreateBackup(path string) (string, error) {
	a.mu.RLock()
	now := a.now()
	backup := models.BackupSnapshot{
		Snapshot:   a.snapshotLocked(),
		BackupTime: dateutils.FormatTimestamp(now),
		Version:    models.BackupVersion,
	}
	a.mu.RUnlock()

	if path == "" {
		path = filepath.Join(a.backupDir, backupName(now))
	}

	data, err := store.Encode(backup)
	if err == nil {
		err = fileutils.WriteFileAtomic(path, data, models.PermissionDataFile)
	}
	if err != nil {
		a.logger.WithError(err).Error("Failed to create backup", logging.F(logging.FieldFile, path))
		return "", &ledgererror.BackupError{Path: path, Err: err}
	}

	a.logger.Info("Backup created",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, len(backup.Records)))
	return path, nil
}

// ListBackups returns the auto-named backups in the backup directory, oldest first.
func (a *Account) ListBackups() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(a.backupDir, backupPrefix+"*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// RestoreFromBackup replaces records and loans with the backup's, merges its
// settings key-wise over the current settings and replaces the category set when
// the backup carries one. The file must contain records, loans and settings;
// otherwise nothing changes.
func (a *Account) RestoreFromBackup(path string) error {
	doc, err := readDocument(path, true)
	if err != nil {
		a.logger.WithError(err).Error("Failed to restore backup", logging.F(logging.FieldFile, path))
		return &ledgererror.RestoreError{Path: path, Err: err}
	}

	if err := a.apply(doc, "restore_backup"); err != nil {
		return &ledgererror.RestoreError{Path: path, Err: err}
	}
	a.logger.Info("Backup restored", logging.F(logging.FieldFile, path))
	return nil
}

// Import applies a JSON snapshot the same way RestoreFromBackup does, except that
// every top-level key is optional.
func (a *Account) Import(path string) error {
	doc, err := readDocument(path, false)
	if err != nil {
		a.logger.WithError(err).Error("Failed to import snapshot", logging.F(logging.FieldFile, path))
		return fmt.Errorf("import failed for %s: %w", path, err)
	}
	if err := a.apply(doc, "import"); err != nil {
		return fmt.Errorf("import failed for %s: %w", path, err)
	}
	a.logger.Info("Snapshot imported", logging.F(logging.FieldFile, path))
	return nil
}

// AppendRecords adds already-built records, such as rows read from a CSV export.
// Records without an id get a fresh one; the overconsumption mark is kept as given.
func (a *Account) AppendRecords(records []models.Record) (int, error) {
	for i, r := range records {
		if err := validation.Amount("amount", r.Amount); err != nil {
			return 0, fmt.Errorf("record %d: %w", i+1, err)
		}
		if err := validation.Kind(r.Kind); err != nil {
			return 0, fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	if len(records) == 0 {
		return 0, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, r := range records {
		if r.ID == "" {
			r.ID = a.newID()
		}
		if r.Timestamp == "" {
			r.Timestamp = dateutils.FormatTimestamp(a.now())
		}
		a.records = append(a.records, r)
	}
	a.logger.Info("Records appended", logging.F(logging.FieldCount, len(records)))
	return len(records), a.persistLocked("append_records")
}

// apply installs a decoded document. Everything is decoded before any state
// changes, so a malformed settings object leaves the account untouched.
func (a *Account) apply(doc document, operation string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	settings := a.settings
	if doc.settings != nil {
		if err := json.Unmarshal(doc.settings, &settings); err != nil {
			return &ledgererror.ValidationError{Field: models.KeySettings, Reason: err.Error()}
		}
	}

	if doc.hasRecords {
		a.records = doc.records
	}
	if doc.hasLoans {
		a.loans = doc.loans
	}
	a.settings = settings
	if doc.hasCats {
		a.overcats = models.CategorySet(doc.categories)
	}
	return a.persistLocked(operation)
}

func readDocument(path string, requireAll bool) (document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return document{}, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return document{}, &ledgererror.ValidationError{Reason: "invalid JSON: " + err.Error()}
	}

	if requireAll {
		var missing []string
		for _, key := range requiredBackupKeys {
			if _, ok := raw[key]; !ok {
				missing = append(missing, key)
			}
		}
		if len(missing) > 0 {
			return document{}, &ledgererror.ValidationError{
				Reason: "invalid backup file format: missing " + strings.Join(missing, ", "),
			}
		}
	}

	var doc document
	if v, ok := raw[models.KeyRecords]; ok {
		if err := json.Unmarshal(v, &doc.records); err != nil {
			return document{}, &ledgererror.ValidationError{Field: models.KeyRecords, Reason: err.Error()}
		}
		if doc.records == nil {
			doc.records = []models.Record{}
		}
		doc.hasRecords = true
	}
	if v, ok := raw[models.KeyLoans]; ok {
		if err := json.Unmarshal(v, &doc.loans); err != nil {
			return document{}, &ledgererror.ValidationError{Field: models.KeyLoans, Reason: err.Error()}
		}
		if doc.loans == nil {
			doc.loans = []models.LoanRecord{}
		}
		doc.hasLoans = true
	}
	if v, ok := raw[models.KeySettings]; ok {
		doc.settings = v
	}
	if v, ok := raw[models.KeyOverconsumptionCategories]; ok {
		if err := json.Unmarshal(v, &doc.categories); err != nil {
			return document{}, &ledgererror.ValidationError{Field: models.KeyOverconsumptionCategories, Reason: err.Error()}
		}
		doc.hasCats = true
	}
	return doc, nil
}
