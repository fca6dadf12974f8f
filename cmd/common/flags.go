package common

import (
	"fmt"
	"io"
	"strings"

	"fjacquet/expense-manager/internal/dateutils"
	"fjacquet/expense-manager/internal/ledgererror"
	"fjacquet/expense-manager/internal/reminder"
	"fjacquet/expense-manager/internal/statistics"
)

// ParseRange turns --from/--to flag values into a statistics range.
// A date-only --to includes the whole day.
func ParseRange(from, to string) (statistics.Range, error) {
	var r statistics.Range
	if from = strings.TrimSpace(from); from != "" {
		t, err := dateutils.ParseISO(from)
		if err != nil {
			return r, &ledgererror.ValidationError{Field: "from", Reason: err.Error()}
		}
		r.Start = dateutils.FormatTimestamp(t)
	}
	if to = strings.TrimSpace(to); to != "" {
		t, err := dateutils.ParseISO(to)
		if err != nil {
			return r, &ledgererror.ValidationError{Field: "to", Reason: err.Error()}
		}
		if len(to) == len(dateutils.DateLayoutISO) {
			t = t.AddDate(0, 0, 1)
		}
		r.End = dateutils.FormatTimestamp(t)
	}
	if r.Start != "" && r.End != "" && r.End <= r.Start {
		return r, &ledgererror.ValidationError{Field: "to", Reason: "must be after --from"}
	}
	return r, nil
}

// NotificationPrinter returns a reminder listener writing "[kind] message" lines to w.
func NotificationPrinter(w io.Writer) reminder.Listener {
	return func(kind reminder.Kind, message string) {
		fmt.Fprintf(w, "[%s] %s\n", kind, message)
	}
}
