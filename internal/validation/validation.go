// Package validation checks user input before it reaches the account.
package validation

import (
	"math"
	"strings"

	"fjacquet/expense-manager/internal/currencyutils"
	"fjacquet/expense-manager/internal/dateutils"
	"fjacquet/expense-manager/internal/ledgererror"
	"fjacquet/expense-manager/internal/models"
)

// Amount checks that v is a finite, non-negative amount.
func Amount(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ledgererror.ValidationError{Field: field, Reason: "must be a finite number"}
	}
	if v < 0 {
		return &ledgererror.ValidationError{Field: field, Reason: "must not be negative"}
	}
	return nil
}

// Finite checks that v is a finite number; negative values are allowed.
func Finite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ledgererror.ValidationError{Field: field, Reason: "must be a finite number"}
	}
	return nil
}

// ParseAmount parses a decimal string into a non-negative amount.
func ParseAmount(field, value string) (float64, error) {
	v, err := ParseNumber(field, value)
	if err != nil {
		return 0, err
	}
	if err := Amount(field, v); err != nil {
		return 0, err
	}
	return v, nil
}

// ParseNumber parses a decimal string that may be negative. Thousands separators,
// a decimal comma and a currency symbol or code are accepted.
func ParseNumber(field, value string) (float64, error) {
	d, err := currencyutils.Parse(value)
	if err != nil {
		return 0, &ledgererror.ValidationError{Field: field, Reason: "invalid number '" + value + "'"}
	}
	f, _ := d.Float64()
	return f, nil
}

// Kind checks a record kind.
func Kind(k models.Kind) error {
	if !k.IsValid() {
		return &ledgererror.ValidationError{Field: "kind", Reason: "must be income or expense, got '" + string(k) + "'"}
	}
	return nil
}

// ReminderTime checks an HH:MM time of day.
func ReminderTime(value string) error {
	if !dateutils.IsValidClock(value) {
		return &ledgererror.ValidationError{Field: "reminder_time", Reason: "must be HH:MM, got '" + value + "'"}
	}
	return nil
}

// Timestamp checks an optional ISO-8601 timestamp. Empty is allowed.
func Timestamp(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := dateutils.ParseISO(value); err != nil {
		return &ledgererror.ValidationError{Field: field, Reason: err.Error()}
	}
	return nil
}

// CanonicalTimestamp validates an optional timestamp and returns it in the
// stored second-precision layout. Empty stays empty.
func CanonicalTimestamp(field, value string) (string, error) {
	if value == "" {
		return "", nil
	}
	ts, err := dateutils.CanonicalTimestamp(value)
	if err != nil {
		return "", &ledgererror.ValidationError{Field: field, Reason: err.Error()}
	}
	return ts, nil
}

// Required checks that a text field is not blank.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ledgererror.ValidationError{Field: field, Reason: "must not be empty"}
	}
	return nil
}

// RecordUpdate checks every field set in u.
func RecordUpdate(u models.RecordUpdate) error {
	if u.Amount != nil {
		if err := Amount("amount", *u.Amount); err != nil {
			return err
		}
	}
	if u.Kind != nil {
		if err := Kind(*u.Kind); err != nil {
			return err
		}
	}
	if u.Timestamp != nil {
		if err := Required("timestamp", *u.Timestamp); err != nil {
			return err
		}
		if err := Timestamp("timestamp", *u.Timestamp); err != nil {
			return err
		}
	}
	return nil
}
