package validation

import (
	"errors"
	"math"
	"testing"

	"fjacquet/expense-manager/internal/ledgererror"
	"fjacquet/expense-manager/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertValidationError(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	var ve *ledgererror.ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %T", err)
	assert.Equal(t, field, ve.Field)
}

func TestAmount(t *testing.T) {
	assert.NoError(t, Amount("amount", 0))
	assert.NoError(t, Amount("amount", 12.5))
	assertValidationError(t, Amount("amount", -1), "amount")
	assertValidationError(t, Amount("amount", math.NaN()), "amount")
	assertValidationError(t, Amount("amount", math.Inf(1)), "amount")
}

func TestFinite(t *testing.T) {
	assert.NoError(t, Finite("initial_balance", -250))
	assertValidationError(t, Finite("initial_balance", math.Inf(-1)), "initial_balance")
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"100", 100, false},
		{" 12.50 ", 12.5, false},
		{"0", 0, false},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"1,5", 1.5, false},
		{"1'234.50", 1234.5, false},
		{"CHF 12.00", 12, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount("amount", tt.input)
			if tt.wantErr {
				assertValidationError(t, err, "amount")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNumber_AllowsNegative(t *testing.T) {
	got, err := ParseNumber("initial_balance", "-42.5")
	require.NoError(t, err)
	assert.Equal(t, -42.5, got)
}

func TestKind(t *testing.T) {
	assert.NoError(t, Kind(models.KindIncome))
	assert.NoError(t, Kind(models.KindExpense))
	assertValidationError(t, Kind("transfer"), "kind")
}

func TestReminderTime(t *testing.T) {
	assert.NoError(t, ReminderTime("20:00"))
	assertValidationError(t, ReminderTime("25:00"), "reminder_time")
	assertValidationError(t, ReminderTime("8pm"), "reminder_time")
}

func TestTimestamp(t *testing.T) {
	assert.NoError(t, Timestamp("timestamp", ""))
	assert.NoError(t, Timestamp("timestamp", "2025-01-01T10:00:00"))
	assert.NoError(t, Timestamp("due_date", "2025-01-01"))
	assertValidationError(t, Timestamp("due_date", "01/02/2025"), "due_date")
}

func TestCanonicalTimestamp(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"", ""},
		{"2025-01-01T10:00:00", "2025-01-01T10:00:00"},
		{"2025-01-01", "2025-01-01T00:00:00"},
		{"2025-01-01 10:00", "2025-01-01T10:00:00"},
	}
	for _, tt := range tests {
		got, err := CanonicalTimestamp("timestamp", tt.value)
		require.NoError(t, err, tt.value)
		assert.Equal(t, tt.want, got, tt.value)
	}

	_, err := CanonicalTimestamp("loan_date", "tomorrow")
	assertValidationError(t, err, "loan_date")
}

func TestRequired(t *testing.T) {
	assert.NoError(t, Required("name", "Bob"))
	assertValidationError(t, Required("name", "   "), "name")
}

func TestRecordUpdate(t *testing.T) {
	neg := -5.0
	bad := models.Kind("loan")
	ts := "yesterday"
	ok := 5.0

	assert.NoError(t, RecordUpdate(models.RecordUpdate{}))
	assert.NoError(t, RecordUpdate(models.RecordUpdate{Amount: &ok}))
	assertValidationError(t, RecordUpdate(models.RecordUpdate{Amount: &neg}), "amount")
	assertValidationError(t, RecordUpdate(models.RecordUpdate{Kind: &bad}), "kind")
	assertValidationError(t, RecordUpdate(models.RecordUpdate{Timestamp: &ts}), "timestamp")
	empty := ""
	assertValidationError(t, RecordUpdate(models.RecordUpdate{Timestamp: &empty}), "timestamp")
}
