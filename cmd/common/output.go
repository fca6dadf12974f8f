// Package common contains shared functionality for command handlers
package common

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"fjacquet/expense-manager/internal/models"
	"fjacquet/expense-manager/internal/validation"

	"golang.org/x/term"
)

// ParseAmount parses a non-negative amount given on the command line.
func ParseAmount(field, value string) (float64, error) {
	return validation.ParseAmount(field, value)
}

// ParseNumber parses a possibly negative number given on the command line.
func ParseNumber(field, value string) (float64, error) {
	return validation.ParseNumber(field, value)
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// PrintRecords writes records as an aligned table. Overconsumption-marked
// records are flagged with "!".
func PrintRecords(w io.Writer, records []models.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No records.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIMESTAMP\tKIND\tCATEGORY\tAMOUNT\tNOTE")
	for _, r := range records {
		category := r.Category
		if r.OverconsumptionMark {
			category += " !"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Timestamp, r.Kind, category, models.FormatAmount(r.Amount), r.Note)
	}
	return tw.Flush()
}

// PrintLoans writes loans as an aligned table.
func PrintLoans(w io.Writer, loans []models.LoanRecord) error {
	if len(loans) == 0 {
		_, err := fmt.Fprintln(w, "No loans.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tAMOUNT\tLOAN DATE\tDUE DATE\tREPAID\tNOTE")
	for _, l := range loans {
		dueDate := "-"
		if l.HasDueDate() {
			dueDate = *l.DueDate
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\t%s\n",
			l.ID, l.Name, models.FormatAmount(l.Amount), l.LoanDate, dueDate, l.Repaid, l.Note)
	}
	return tw.Flush()
}

// PrintAmounts writes label/amount pairs, one per line, in the given order.
func PrintAmounts(w io.Writer, labels []string, amounts map[string]float64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, label := range labels {
		fmt.Fprintf(tw, "%s\t%s\n", label, models.FormatAmount(amounts[label]))
	}
	return tw.Flush()
}
