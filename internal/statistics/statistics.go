// Package statistics computes read-only aggregates over an account snapshot:
// totals, category breakdowns and monthly or yearly series.
//
// Every query takes one consistent copy of the account state, so results are never
// torn by a concurrent mutation.
package statistics

import (
	"time"

	"fjacquet/expense-manager/internal/dateutils"
	"fjacquet/expense-manager/internal/logging"
	"fjacquet/expense-manager/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultMonths is the length of the default monthly series.
const DefaultMonths = 6

// Source provides the snapshot statistics are computed from.
type Source interface {
	View() models.Snapshot
}

// Range is a half-open [Start, End) timestamp window. An empty bound is unbounded.
// Bounds are compared to record timestamps as strings.
type Range struct {
	Start string
	End   string
}

// Contains reports whether timestamp falls inside the range.
func (r Range) Contains(timestamp string) bool {
	if r.Start != "" && timestamp < r.Start {
		return false
	}
	if r.End != "" && timestamp >= r.End {
		return false
	}
	return true
}

// Totals is the income and expense of a filtered record set. Balance includes the
// initial balance.
type Totals struct {
	Income  float64 `json:"income" yaml:"income"`
	Expense float64 `json:"expense" yaml:"expense"`
	Balance float64 `json:"balance" yaml:"balance"`
}

// MonthTotals is one entry of a monthly series. Balance is income - expense of the
// month alone.
type MonthTotals struct {
	Month   string  `json:"month" yaml:"month"`
	Income  float64 `json:"income" yaml:"income"`
	Expense float64 `json:"expense" yaml:"expense"`
	Balance float64 `json:"balance" yaml:"balance"`
}

// YearlySummary aggregates one calendar year.
type YearlySummary struct {
	Year              int                `json:"year" yaml:"year"`
	TotalIncome       float64            `json:"total_income" yaml:"total_income"`
	TotalExpense      float64            `json:"total_expense" yaml:"total_expense"`
	NetBalance        float64            `json:"net_balance" yaml:"net_balance"`
	MonthlyTrend      []MonthTotals      `json:"monthly_trend" yaml:"monthly_trend"`
	CategoryBreakdown map[string]float64 `json:"category_breakdown" yaml:"category_breakdown"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine answers statistics queries against a Source.
type Engine struct {
	source Source
	logger logging.Logger
	now    func() time.Time
}

// NewEngine creates an Engine reading from source.
func NewEngine(source Source, logger logging.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = logging.Nop()
	}
	e := &Engine{
		source: source,
		logger: logger.WithField(logging.FieldComponent, "statistics"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FilterRecords returns the records inside r, in insertion order.
func (e *Engine) FilterRecords(r Range) []models.Record {
	return filter(e.source.View().Records, r)
}

// Totals sums income and expense inside r. Balance is income - expense plus the
// initial balance, unlike Account.Balance it only counts the filtered records.
func (e *Engine) Totals(r Range) Totals {
	snapshot := e.source.View()

	var tally models.Tally
	tally.AddAll(filter(snapshot.Records, r))
	return Totals{
		Income:  tally.Income(),
		Expense: tally.Expense(),
		Balance: tally.BalanceFrom(snapshot.Settings.InitialBalance),
	}
}

// CategoryBreakdown sums expenses per category inside r. Income is summed under
// models.IncomeBucket; every category encountered gets a bucket, even when only
// income was booked on it.
func (e *Engine) CategoryBreakdown(r Range) map[string]float64 {
	return breakdown(filter(e.source.View().Records, r))
}

// MonthlySeries returns one entry per calendar month, oldest first, for the months
// calendar months ending with the current month. It is empty when months <= 0.
func (e *Engine) MonthlySeries(months int) []MonthTotals {
	if months <= 0 {
		return []MonthTotals{}
	}
	records := e.source.View().Records
	current := dateutils.StartOfMonth(e.now())

	series := make([]MonthTotals, 0, months)
	for i := months - 1; i >= 0; i-- {
		month := current.AddDate(0, -i, 0)
		series = append(series, monthTotals(records, month.Year(), month.Month()))
	}
	return series
}

// YearlySummary aggregates the given calendar year; year 0 means the current year.
// MonthlyTrend always has twelve entries, January first.
func (e *Engine) YearlySummary(year int) YearlySummary {
	if year == 0 {
		year = e.now().Year()
	}
	records := e.source.View().Records

	start, end := dateutils.YearRange(year)
	yearRecords := filter(records, Range{Start: start, End: end})

	var tally models.Tally
	tally.AddAll(yearRecords)

	trend := make([]MonthTotals, 0, 12)
	for month := time.January; month <= time.December; month++ {
		trend = append(trend, monthTotals(yearRecords, year, month))
	}

	e.logger.Debug("Yearly summary computed",
		logging.F("year", year),
		logging.F(logging.FieldCount, len(yearRecords)))

	return YearlySummary{
		Year:              year,
		TotalIncome:       tally.Income(),
		TotalExpense:      tally.Expense(),
		NetBalance:        tally.Net(),
		MonthlyTrend:      trend,
		CategoryBreakdown: breakdown(yearRecords),
	}
}

func monthTotals(records []models.Record, year int, month time.Month) MonthTotals {
	start, end := dateutils.MonthRange(year, month)

	var tally models.Tally
	tally.AddAll(filter(records, Range{Start: start, End: end}))
	return MonthTotals{
		Month:   dateutils.MonthLabel(year, month),
		Income:  tally.Income(),
		Expense: tally.Expense(),
		Balance: tally.Net(),
	}
}

func filter(records []models.Record, r Range) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, rec := range records {
		if r.Contains(rec.Timestamp) {
			out = append(out, rec)
		}
	}
	return out
}

func breakdown(records []models.Record) map[string]float64 {
	sums := make(map[string]decimal.Decimal)
	for _, r := range records {
		if _, ok := sums[r.Category]; !ok {
			sums[r.Category] = decimal.Zero
		}
		if r.IsIncome() {
			models.SumBy(sums, models.IncomeBucket, r.Amount)
		} else {
			models.SumBy(sums, r.Category, r.Amount)
		}
	}
	return models.Floats(sums)
}
