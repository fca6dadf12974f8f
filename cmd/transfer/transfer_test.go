package transfer

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/expense-manager/internal/config"
	"fjacquet/expense-manager/internal/container"
	"fjacquet/expense-manager/internal/ledgererror"
	"fjacquet/expense-manager/internal/logging"
	"fjacquet/expense-manager/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newTestContainer(t *testing.T) *container.Container {
	t.Helper()
	cfg := config.Default()
	cfg.Data.File = filepath.Join(t.TempDir(), "data.json")
	cfg.Data.BackupDir = t.TempDir()

	c, err := container.NewContainer(cfg, container.WithLogger(logging.NewMockLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func seeded(t *testing.T) *container.Container {
	t.Helper()
	c := newTestContainer(t)
	acct := c.GetAccount()
	require.NoError(t, acct.AddOverconsumptionCategory("Games"))
	_, err := acct.AddRecord(1000, models.KindIncome, "Salary", "2024-01-05T09:00:00", "january")
	require.NoError(t, err)
	_, err = acct.AddRecord(60, models.KindExpense, "Games", "2024-01-06T21:00:00", "")
	require.NoError(t, err)
	_, err = acct.AddLoan("Bob", 25, "2024-01-07T10:00:00", "", "")
	require.NoError(t, err)
	return c
}

func TestTransferCommands_Metadata(t *testing.T) {
	assert.Equal(t, "export", ExportCmd.Use)
	assert.Equal(t, "import", ImportCmd.Use)
	assert.Equal(t, FormatJSON, ExportCmd.Flags().Lookup("format").DefValue)
	assert.Equal(t, "", ImportCmd.Flags().Lookup("format").DefValue)
	assert.Equal(t, "i", ImportCmd.Flags().Lookup("input").Shorthand)
}

func TestRunExport(t *testing.T) {
	c := seeded(t)

	t.Run("json to stdout", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runExport(c, &out, Options{Format: "json"}))

		var got models.Snapshot
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, c.GetAccount().View(), got)
	})

	t.Run("yaml", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runExport(c, &out, Options{Format: "YAML"}))

		var got models.Snapshot
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
		assert.Len(t, got.Records, 2)
		assert.Equal(t, []string{"Games"}, got.OverconsumptionCategories)
	})

	t.Run("csv", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runExport(c, &out, Options{Format: "csv"}))

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "id,timestamp,kind,category,amount,note,overconsumption_mark", lines[0])
		assert.True(t, strings.HasSuffix(lines[2], ",expense,Games,60,,true"))
	})

	t.Run("to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "export.json")
		var out bytes.Buffer
		require.NoError(t, runExport(c, &out, Options{Format: "json", Output: path}))
		assert.Equal(t, "Exported 2 records and 1 loans to "+path+"\n", out.String())
		assert.FileExists(t, path)
	})

	t.Run("unsupported", func(t *testing.T) {
		assert.ErrorContains(t, runExport(c, &bytes.Buffer{}, Options{Format: "xml"}), "unsupported export format")
	})
}

func TestExportImportRoundTrip_JSON(t *testing.T) {
	source := seeded(t)
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, runExport(source, &bytes.Buffer{}, Options{Format: "json", Output: path}))

	target := newTestContainer(t)
	var out bytes.Buffer
	require.NoError(t, runImport(target, &out, Options{Input: path}))

	assert.Equal(t, source.GetAccount().View(), target.GetAccount().View())
	assert.Contains(t, out.String(), "2 records, 1 loans")
}

func TestExportImportRoundTrip_CSV(t *testing.T) {
	source := seeded(t)
	path := filepath.Join(t.TempDir(), "records.csv")
	require.NoError(t, runExport(source, &bytes.Buffer{}, Options{Format: "csv", Output: path}))

	target := newTestContainer(t)
	_, err := target.GetAccount().AddRecord(5, models.KindExpense, "Coffee", "2024-01-01T08:00:00", "")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runImport(target, &out, Options{Input: path}))
	assert.Equal(t, "Imported 2 records from "+path+"\n", out.String())

	records := target.GetAccount().Records()
	require.Len(t, records, 3)
	assert.Equal(t, "Coffee", records[0].Category)
	assert.Equal(t, source.GetAccount().Records(), records[1:])
}

func TestRunImport_Errors(t *testing.T) {
	dir := t.TempDir()
	badCSV := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(badCSV, []byte("id,timestamp,kind,category,amount,note,overconsumption_mark\nr1,,gift,Food,5,,false\n"), 0600))
	badJSON := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badJSON, []byte("{not json"), 0600))

	c := newTestContainer(t)

	err := runImport(c, &bytes.Buffer{}, Options{Input: badCSV})
	var pErr *ledgererror.ParseError
	assert.ErrorAs(t, err, &pErr)

	assert.ErrorContains(t, runImport(c, &bytes.Buffer{}, Options{Input: badJSON}), "invalid JSON")
	assert.ErrorContains(t, runImport(c, &bytes.Buffer{}, Options{Input: filepath.Join(dir, "data.txt")}), "unsupported import format")
	assert.Empty(t, c.GetAccount().Records())
}
