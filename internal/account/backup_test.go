package account

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/expense-manager/internal/ledgererror"
	"fjacquet/expense-manager/internal/models"
	"fjacquet/expense-manager/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAccount(t *testing.T, acc *Account) {
	t.Helper()
	require.NoError(t, acc.SetInitialBalance(100))
	require.NoError(t, acc.AddOverconsumptionCategory("Games"))
	_, err := acc.AddRecord(500, models.KindIncome, "Salary", "2024-03-01T09:00:00", "")
	require.NoError(t, err)
	_, err = acc.AddRecord(50, models.KindExpense, "Games", "2024-03-02T20:00:00", "")
	require.NoError(t, err)
	_, err = acc.AddLoan("Bob", 75, "2024-03-03T12:00:00", "2024-04-01", "")
	require.NoError(t, err)
}

func writeJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0600))
}

func TestCreateBackup_WritesStampedSnapshot(t *testing.T) {
	acc := newTestAccount(t, &store.MockStore{})
	seedAccount(t, acc)
	path := filepath.Join(t.TempDir(), "backup.json")

	written, err := acc.CreateBackup(path)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var backup models.BackupSnapshot
	require.NoError(t, json.Unmarshal(data, &backup))

	assert.Equal(t, "1.0", backup.Version)
	assert.Equal(t, "2024-03-15T10:30:00", backup.BackupTime)
	assert.Equal(t, acc.View(), backup.Snapshot)
}

func TestCreateBackup_AutoNamesIntoBackupDir(t *testing.T) {
	dir := t.TempDir()
	acc := newTestAccount(t, &store.MockStore{}, WithBackupDir(dir))

	written, err := acc.CreateBackup("")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "backup_expense_20240315_103000.json"), written)
	assert.FileExists(t, written)
}

func TestListBackups(t *testing.T) {
	dir := t.TempDir()
	acc := newTestAccount(t, &store.MockStore{}, WithBackupDir(dir))

	backups, err := acc.ListBackups()
	require.NoError(t, err)
	assert.Empty(t, backups)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "backup_expense_20240101_080000.json"), []byte("{}"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte("{}"), 0600))
	written, err := acc.CreateBackup("")
	require.NoError(t, err)

	backups, err = acc.ListBackups()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "backup_expense_20240101_080000.json"), written}, backups)
}

func TestCreateBackup_Failure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))
	acc := newTestAccount(t, &store.MockStore{})

	_, err := acc.CreateBackup(filepath.Join(blocker, "backup.json"))

	var bErr *ledgererror.BackupError
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, filepath.Join(blocker, "backup.json"), bErr.Path)
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	st := &store.MockStore{}
	acc := newTestAccount(t, st)
	seedAccount(t, acc)
	before := acc.View()

	path, err := acc.CreateBackup(filepath.Join(t.TempDir(), "backup.json"))
	require.NoError(t, err)

	_, err = acc.AddRecord(1000, models.KindExpense, "Car", "", "")
	require.NoError(t, err)
	_, err = acc.DeleteLoan(before.Loans[0].ID)
	require.NoError(t, err)
	require.NoError(t, acc.SetThresholds(1, 0))
	require.NoError(t, acc.RemoveOverconsumptionCategory("Games"))

	saves := st.SaveCount()
	require.NoError(t, acc.RestoreFromBackup(path))

	assert.Equal(t, before, acc.View())
	assert.InDelta(t, 550.0, acc.Balance(), 1e-9)
	assert.Equal(t, saves+1, st.SaveCount())
}

func TestRestoreFromBackup_MissingKeyLeavesStateUnchanged(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]interface{}
		missing string
	}{
		{
			name:    "no settings",
			payload: map[string]interface{}{"records": []interface{}{}, "loans": []interface{}{}},
			missing: "settings",
		},
		{
			name:    "no records",
			payload: map[string]interface{}{"loans": []interface{}{}, "settings": map[string]interface{}{}},
			missing: "records",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &store.MockStore{}
			acc := newTestAccount(t, st)
			seedAccount(t, acc)
			before := acc.View()
			saves := st.SaveCount()

			path := filepath.Join(t.TempDir(), "partial.json")
			writeJSON(t, path, tt.payload)

			err := acc.RestoreFromBackup(path)

			var rErr *ledgererror.RestoreError
			require.ErrorAs(t, err, &rErr)
			var vErr *ledgererror.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.True(t, strings.Contains(vErr.Reason, tt.missing))
			assert.Equal(t, before, acc.View())
			assert.Equal(t, saves, st.SaveCount())
		})
	}
}

func TestRestoreFromBackup_InvalidFiles(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte("{not json"), 0600))
	badRecords := filepath.Join(dir, "bad_records.json")
	require.NoError(t, os.WriteFile(badRecords,
		[]byte(`{"records": "nope", "loans": [], "settings": {}}`), 0600))
	badSettings := filepath.Join(dir, "bad_settings.json")
	require.NoError(t, os.WriteFile(badSettings,
		[]byte(`{"records": [], "loans": [], "settings": {"threshold_warn": "high"}}`), 0600))

	for _, path := range []string{filepath.Join(dir, "missing.json"), garbage, badRecords, badSettings} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			acc := newTestAccount(t, &store.MockStore{})
			seedAccount(t, acc)
			before := acc.View()

			err := acc.RestoreFromBackup(path)

			var rErr *ledgererror.RestoreError
			require.ErrorAs(t, err, &rErr)
			assert.Equal(t, path, rErr.Path)
			assert.Equal(t, before, acc.View())
		})
	}
}

func TestRestoreFromBackup_MergesSettingsKeyWise(t *testing.T) {
	acc := newTestAccount(t, &store.MockStore{})
	seedAccount(t, acc)
	require.NoError(t, acc.SetThresholds(2500, 700))

	path := filepath.Join(t.TempDir(), "backup.json")
	writeJSON(t, path, map[string]interface{}{
		"records":  []interface{}{},
		"loans":    []interface{}{},
		"settings": map[string]interface{}{"initial_balance": 42.0},
	})

	require.NoError(t, acc.RestoreFromBackup(path))

	settings := acc.Settings()
	assert.Equal(t, 42.0, settings.InitialBalance)
	assert.Equal(t, 2500.0, settings.ThresholdWarn)
	assert.Equal(t, 700.0, settings.ThresholdUrgent)
	assert.Empty(t, acc.Records())
	assert.Empty(t, acc.Loans())
	// no category key in the file, so the set is untouched
	assert.Equal(t, []string{"Games"}, acc.OverconsumptionCategories())
}

func TestImport_AllKeysOptional(t *testing.T) {
	st := &store.MockStore{}
	acc := newTestAccount(t, st)
	seedAccount(t, acc)
	before := acc.View()

	path := filepath.Join(t.TempDir(), "export.json")
	writeJSON(t, path, map[string]interface{}{
		"overconsumption_categories": []string{"Bars"},
	})

	require.NoError(t, acc.Import(path))

	view := acc.View()
	assert.Equal(t, before.Records, view.Records)
	assert.Equal(t, before.Loans, view.Loans)
	assert.Equal(t, before.Settings, view.Settings)
	assert.Equal(t, []string{"Bars"}, view.OverconsumptionCategories)
}

func TestImport_InvalidJSON(t *testing.T) {
	acc := newTestAccount(t, &store.MockStore{})
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0600))

	err := acc.Import(path)

	var vErr *ledgererror.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestAppendRecords(t *testing.T) {
	st := &store.MockStore{}
	acc := newTestAccount(t, st)

	n, err := acc.AppendRecords([]models.Record{
		{ID: "keep", Amount: 10, Kind: models.KindIncome, Category: "Gift", Timestamp: "2024-01-01T00:00:00"},
		{Amount: 4, Kind: models.KindExpense, Category: "Food"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records := acc.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "keep", records[0].ID)
	assert.Equal(t, "id-1", records[1].ID)
	assert.Equal(t, "2024-03-15T10:30:00", records[1].Timestamp)
	assert.InDelta(t, 6.0, acc.Balance(), 1e-9)
	assert.Equal(t, 1, st.SaveCount())
}

func TestAppendRecords_RejectsInvalidRowsAtomically(t *testing.T) {
	st := &store.MockStore{}
	acc := newTestAccount(t, st)

	_, err := acc.AppendRecords([]models.Record{
		{Amount: 4, Kind: models.KindExpense},
		{Amount: -1, Kind: models.KindExpense},
	})

	assert.Error(t, err)
	assert.Empty(t, acc.Records())
	assert.Equal(t, 0, st.SaveCount())
}
