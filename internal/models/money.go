package models

import (
	"github.com/shopspring/decimal"
)

// Tally accumulates income and expense amounts with decimal precision, so a long
// run of additions does not drift the way repeated float64 sums do.
type Tally struct {
	income  decimal.Decimal
	expense decimal.Decimal
}

// Add books a record on the income or expense side.
func (t *Tally) Add(r Record) {
	amount := decimal.NewFromFloat(r.Amount)
	if r.IsIncome() {
		t.income = t.income.Add(amount)
	} else {
		t.expense = t.expense.Add(amount)
	}
}

// AddAll books every record in records.
func (t *Tally) AddAll(records []Record) {
	for _, r := range records {
		t.Add(r)
	}
}

// Income returns the income total.
func (t Tally) Income() float64 {
	return toFloat(t.income)
}

// Expense returns the expense total.
func (t Tally) Expense() float64 {
	return toFloat(t.expense)
}

// Net returns income minus expense.
func (t Tally) Net() float64 {
	return toFloat(t.income.Sub(t.expense))
}

// BalanceFrom returns initial + income - expense.
func (t Tally) BalanceFrom(initial float64) float64 {
	return toFloat(decimal.NewFromFloat(initial).Add(t.income).Sub(t.expense))
}

// SumBy adds amount to the bucket key of sums, creating it when missing.
func SumBy(sums map[string]decimal.Decimal, key string, amount float64) {
	sums[key] = sums[key].Add(decimal.NewFromFloat(amount))
}

// Floats converts a decimal bucket map to float64 values.
func Floats(sums map[string]decimal.Decimal) map[string]float64 {
	out := make(map[string]float64, len(sums))
	for k, v := range sums {
		out[k] = toFloat(v)
	}
	return out
}

// FormatAmount renders an amount with two decimals.
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
