package models

import (
	"fmt"
	"strings"
)

// Kind distinguishes income from expense records.
type Kind string

// ParseKind converts user input into a Kind.
func ParseKind(value string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case KindIncome:
		return KindIncome, nil
	case KindExpense:
		return KindExpense, nil
	default:
		return "", fmt.Errorf("unknown record kind %q (want %q or %q)", value, KindIncome, KindExpense)
	}
}

// IsValid reports whether k is one of the known kinds.
func (k Kind) IsValid() bool {
	return k == KindIncome || k == KindExpense
}

// Record is a single income or expense transaction.
type Record struct {
	ID                  string  `json:"id" yaml:"id"`
	Amount              float64 `json:"amount" yaml:"amount"`
	Kind                Kind    `json:"kind" yaml:"kind"`
	Category            string  `json:"category" yaml:"category"`
	Timestamp           string  `json:"timestamp" yaml:"timestamp"` // ISO-8601, second precision, local time
	Note                string  `json:"note" yaml:"note"`
	OverconsumptionMark bool    `json:"overconsumption_mark" yaml:"overconsumption_mark"` // frozen at creation
}

// IsIncome reports whether the record adds to the balance.
// Anything that is not income is treated as an expense.
func (r Record) IsIncome() bool {
	return r.Kind == KindIncome
}

// RecordUpdate lists the mutable attributes of a Record. Nil fields are left untouched.
type RecordUpdate struct {
	Amount    *float64
	Kind      *Kind
	Category  *string
	Timestamp *string
	Note      *string
}

// IsEmpty reports whether the update changes nothing.
func (u RecordUpdate) IsEmpty() bool {
	return u.Amount == nil && u.Kind == nil && u.Category == nil && u.Timestamp == nil && u.Note == nil
}

// Apply copies the set fields onto r. The overconsumption mark is never recomputed.
func (u RecordUpdate) Apply(r *Record) {
	if u.Amount != nil {
		r.Amount = *u.Amount
	}
	if u.Kind != nil {
		r.Kind = *u.Kind
	}
	if u.Category != nil {
		r.Category = *u.Category
	}
	if u.Timestamp != nil {
		r.Timestamp = *u.Timestamp
	}
	if u.Note != nil {
		r.Note = *u.Note
	}
}

// LoanRecord is money lent to someone.
type LoanRecord struct {
	ID       string  `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"` // borrower
	Amount   float64 `json:"amount" yaml:"amount"`
	LoanDate string  `json:"loan_date" yaml:"loan_date"`
	DueDate  *string `json:"due_date" yaml:"due_date"`
	Repaid   bool    `json:"repaid" yaml:"repaid"`
	Note     string  `json:"note" yaml:"note"`
}

// HasDueDate reports whether a non-empty due date is set.
func (l LoanRecord) HasDueDate() bool {
	return l.DueDate != nil && *l.DueDate != ""
}

// Settings is the per-account configuration persisted with the snapshot.
type Settings struct {
	InitialBalance  float64 `json:"initial_balance" yaml:"initial_balance"`
	ThresholdWarn   float64 `json:"threshold_warn" yaml:"threshold_warn"`
	ThresholdUrgent float64 `json:"threshold_urgent" yaml:"threshold_urgent"`
	ReminderEnabled bool    `json:"reminder_enabled" yaml:"reminder_enabled"`
	ReminderTime    string  `json:"reminder_time" yaml:"reminder_time"` // HH:MM, advisory only
}

// DefaultSettings returns the settings of a fresh account.
func DefaultSettings() Settings {
	return Settings{
		InitialBalance:  DefaultInitialBalance,
		ThresholdWarn:   DefaultThresholdWarn,
		ThresholdUrgent: DefaultThresholdUrgent,
		ReminderEnabled: DefaultReminderEnabled,
		ReminderTime:    DefaultReminderTime,
	}
}
