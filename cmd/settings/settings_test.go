package settings

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"fjacquet/expense-manager/internal/config"
	"fjacquet/expense-manager/internal/container"
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

func TestSettingsCommand_Metadata(t *testing.T) {
	assert.Equal(t, "settings", Cmd.Use)

	names := make([]string, 0, len(Cmd.Commands()))
	for _, sub := range Cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"show", "thresholds", "initial-balance", "reminder", "overcat"}, names)
	assert.Len(t, overcatCmd.Commands(), 3)
	assert.Equal(t, "yaml", showCmd.Flags().Lookup("format").DefValue)
	assert.Equal(t, "true", reminderCmd.Flags().Lookup("enabled").DefValue)
}

func TestRunShow(t *testing.T) {
	c := newTestContainer(t)
	require.NoError(t, c.GetAccount().AddOverconsumptionCategory("Games"))
	require.NoError(t, c.GetAccount().SetInitialBalance(500))

	t.Run("yaml", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runShow(c, &out, "yaml"))

		var got View
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, 3000.0, got.ThresholdWarn)
		assert.Equal(t, 500.0, got.Balance)
		assert.Equal(t, []string{"Games"}, got.OverconsumptionCategories)
		assert.Equal(t, c.GetAccount().StorePath(), got.DataFile)
	})

	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runShow(c, &out, "json"))

		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, 1000.0, got["threshold_urgent"])
		assert.Equal(t, "20:00", got["reminder_time"])
	})

	assert.Error(t, runShow(c, &bytes.Buffer{}, "xml"))
}

func TestRunThresholds(t *testing.T) {
	tests := []struct {
		name       string
		warn       string
		urgent     string
		wantWarn   float64
		wantUrgent float64
		wantNote   bool
		wantErr    bool
	}{
		{name: "both", warn: "2000", urgent: "500", wantWarn: 2000, wantUrgent: 500},
		{name: "warn only keeps urgent", warn: "2500", wantWarn: 2500, wantUrgent: models.DefaultThresholdUrgent},
		{name: "urgent above warn is accepted", warn: "100", urgent: "200", wantWarn: 100, wantUrgent: 200, wantNote: true},
		{name: "not a number", warn: "lots", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestContainer(t)
			var out bytes.Buffer

			err := runThresholds(c, &out, tt.warn, tt.urgent)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, models.DefaultThresholdWarn, c.GetAccount().Settings().ThresholdWarn)
				return
			}
			require.NoError(t, err)
			s := c.GetAccount().Settings()
			assert.Equal(t, tt.wantWarn, s.ThresholdWarn)
			assert.Equal(t, tt.wantUrgent, s.ThresholdUrgent)
			assert.Equal(t, tt.wantNote, bytes.Contains(out.Bytes(), []byte("Note:")))
		})
	}
}

func TestRunInitialBalance(t *testing.T) {
	c := newTestContainer(t)
	_, err := c.GetAccount().AddRecord(100, models.KindIncome, "Salary", "", "")
	require.NoError(t, err)
	var out bytes.Buffer

	require.NoError(t, runInitialBalance(c, &out, "-250"))
	assert.Equal(t, -250.0, c.GetAccount().Settings().InitialBalance)
	assert.Contains(t, out.String(), "balance is now -150.00")

	assert.Error(t, runInitialBalance(c, &out, "NaN"))
}

func TestRunReminder(t *testing.T) {
	c := newTestContainer(t)
	var out bytes.Buffer

	require.NoError(t, runReminder(c, &out, "07:30", true))
	s := c.GetAccount().Settings()
	assert.True(t, s.ReminderEnabled)
	assert.Equal(t, "07:30", s.ReminderTime)
	assert.Equal(t, "Daily reminder at 07:30 enabled\n", out.String())

	assert.Error(t, runReminder(c, &out, "25:00", true))
	assert.Equal(t, "07:30", c.GetAccount().Settings().ReminderTime)
}

func TestRunOvercat(t *testing.T) {
	c := newTestContainer(t)
	var out bytes.Buffer

	require.NoError(t, runOvercatList(c, &out))
	assert.Equal(t, "No overconsumption categories.\n", out.String())

	require.NoError(t, runOvercatAdd(c, &out, " Games "))
	require.NoError(t, runOvercatAdd(c, &out, "Bars"))
	assert.Error(t, runOvercatAdd(c, &out, "  "))

	out.Reset()
	require.NoError(t, runOvercatList(c, &out))
	assert.Equal(t, "Bars\nGames\n", out.String())

	require.NoError(t, runOvercatRemove(c, &out, "Games"))
	require.NoError(t, runOvercatRemove(c, &out, "never-added"))
	assert.Equal(t, []string{"Bars"}, c.GetAccount().OverconsumptionCategories())
}
