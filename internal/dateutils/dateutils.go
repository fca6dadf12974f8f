// Package dateutils provides the timestamp conventions used by the ledger.
//
// Timestamps are naive local ISO-8601 strings with second precision
// ("2006-01-02T15:04:05"). Range filtering compares these strings
// lexicographically, which is only correct while every stored timestamp uses
// this exact layout.
package dateutils

import (
	"fmt"
	"strings"
	"time"
)

// Layouts used throughout the application
const (
	TimestampLayout   = "2006-01-02T15:04:05"
	DateLayoutISO     = "2006-01-02"
	MonthLabelLayout  = "2006-01"
	BackupStampLayout = "20060102_150405"
)

// isoLayouts are accepted when a timestamp has to be parsed back into a time,
// e.g. loan due dates entered by hand.
var isoLayouts = []string{
	TimestampLayout,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	DateLayoutISO,
}

var isoZonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05-07:00",
	"2006-01-02 15:04:05-07:00",
}

// FormatTimestamp formats t as a second-precision ISO-8601 local timestamp.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseISO parses an ISO-8601 date or date-time. Strings without an offset are
// interpreted in the local time zone.
func ParseISO(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("unable to parse date: empty value")
	}

	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	for _, layout := range isoZonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", value)
}

// CanonicalTimestamp parses value with ParseISO and reformats it in the local
// zone with FormatTimestamp, so stored timestamps compare correctly as strings.
func CanonicalTimestamp(value string) (string, error) {
	t, err := ParseISO(value)
	if err != nil {
		return "", err
	}
	return FormatTimestamp(t.Local()), nil
}

// StartOfMonth returns midnight on the first day of the month for a given date
func StartOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
}

// MonthRange returns the half-open [start, end) timestamp bounds of a calendar month.
func MonthRange(year int, month time.Month) (string, string) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0)
	return FormatTimestamp(start), FormatTimestamp(end)
}

// YearRange returns the half-open [start, end) timestamp bounds of a calendar year.
func YearRange(year int) (string, string) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
	return FormatTimestamp(start), FormatTimestamp(start.AddDate(1, 0, 0))
}

// MonthLabel formats the "YYYY-MM" label of a month.
func MonthLabel(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.Local).Format(MonthLabelLayout)
}

// CompareDates compares the calendar dates of two times, ignoring the clock:
//
//	-1 if date1 is before date2
//	 0 if date1 is equal to date2
//	 1 if date1 is after date2
func CompareDates(date1, date2 time.Time) int {
	date1 = time.Date(date1.Year(), date1.Month(), date1.Day(), 0, 0, 0, 0, time.UTC)
	date2 = time.Date(date2.Year(), date2.Month(), date2.Day(), 0, 0, 0, 0, time.UTC)

	if date1.Before(date2) {
		return -1
	} else if date1.After(date2) {
		return 1
	}
	return 0
}

// IsValidClock reports whether value is a 24-hour "HH:MM" time of day.
func IsValidClock(value string) bool {
	if len(value) != 5 {
		return false
	}
	_, err := time.Parse("15:04", value)
	return err == nil
}
