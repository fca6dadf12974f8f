// Package account holds the authoritative in-memory state of a ledger: records,
// loans, settings and the overconsumption category set.
//
// Account is the only mutator of that state. Every mutating operation writes the
// complete snapshot through the store before it returns, and all access is
// guarded by a read/write mutex so a background reminder poll can read while the
// foreground mutates.
package account

import (
	"sync"
	"time"

	"fjacquet/expense-manager/internal/dateutils"
	"fjacquet/expense-manager/internal/logging"
	"fjacquet/expense-manager/internal/metrics"
	"fjacquet/expense-manager/internal/models"
	"fjacquet/expense-manager/internal/store"
	"fjacquet/expense-manager/internal/validation"

	"github.com/google/uuid"
)

// Option configures an Account.
type Option func(*Account)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Account) {
		if now != nil {
			a.now = now
		}
	}
}

// WithIDGenerator replaces the UUID generator, for tests.
func WithIDGenerator(gen func() string) Option {
	return func(a *Account) {
		if gen != nil {
			a.newID = gen
		}
	}
}

// WithMetrics attaches prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Account) {
		a.metrics = m
	}
}

// WithBackupDir sets the directory auto-named backups are written to.
func WithBackupDir(dir string) Option {
	return func(a *Account) {
		a.backupDir = dir
	}
}

// Account is the mutex-guarded ledger state.
type Account struct {
	mu        sync.RWMutex
	store     store.Persister
	logger    logging.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
	newID     func() string
	backupDir string

	records  []models.Record
	loans    []models.LoanRecord
	settings models.Settings
	overcats map[string]struct{}
}

// New loads the snapshot from st and returns the account built from it.
func New(st store.Persister, logger logging.Logger, opts ...Option) *Account {
	if logger == nil {
		logger = logging.Nop()
	}
	a := &Account{
		store:  st,
		logger: logger.WithField(logging.FieldComponent, "account"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.loadLocked()
	return a
}

// Reload replaces the in-memory state with what the store holds now, picking up
// changes written by another process. Nothing is persisted.
func (a *Account) Reload() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loadLocked()
}

// loadLocked reads the snapshot from the store. Callers hold the write lock or
// own a not yet shared account.
func (a *Account) loadLocked() {
	snapshot := a.store.Load()
	a.records = snapshot.Records
	a.loans = snapshot.Loans
	a.settings = snapshot.Settings
	a.overcats = models.CategorySet(snapshot.OverconsumptionCategories)

	a.logger.Debug("Account loaded",
		logging.F("records", len(a.records)),
		logging.F("loans", len(a.loans)))
}

// snapshotLocked copies the current state. Callers hold at least the read lock.
func (a *Account) snapshotLocked() models.Snapshot {
	return models.Snapshot{
		Records:                   a.records,
		Loans:                     a.loans,
		Settings:                  a.settings,
		OverconsumptionCategories: models.SortedCategories(a.overcats),
	}.Clone()
}

// persistLocked writes the full snapshot. Callers hold the write lock, so writes
// are serialized and always reflect a complete state.
func (a *Account) persistLocked(operation string) error {
	a.metrics.Mutation(operation)
	if err := a.store.Save(a.snapshotLocked()); err != nil {
		a.metrics.PersistFailure()
		a.logger.WithError(err).Warn("Mutation applied but not persisted",
			logging.F(logging.FieldOperation, operation))
		return err
	}
	return nil
}

// AddRecord appends a new record. An empty timestamp defaults to the current local
// time; any other is stored in the canonical second-precision layout. The overconsumption mark is taken from the category set as it is now.
//
// The record stays in memory even when the returned error is a persist failure.
func (a *Account) AddRecord(amount float64, kind models.Kind, category, timestamp, note string) (models.Record, error) {
	if err := validation.Amount("amount", amount); err != nil {
		return models.Record{}, err
	}
	if err := validation.Kind(kind); err != nil {
		return models.Record{}, err
	}
	timestamp, err := validation.CanonicalTimestamp("timestamp", timestamp)
	if err != nil {
		return models.Record{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if timestamp == "" {
		timestamp = dateutils.FormatTimestamp(a.now())
	}
	_, marked := a.overcats[category]
	rec := models.Record{
		ID:                  a.newID(),
		Amount:              amount,
		Kind:                kind,
		Category:            category,
		Timestamp:           timestamp,
		Note:                note,
		OverconsumptionMark: marked,
	}
	a.records = append(a.records, rec)

	a.logger.Info("Record added",
		logging.F(logging.FieldRecordID, rec.ID),
		logging.F(logging.FieldKind, rec.Kind),
		logging.F(logging.FieldCategory, rec.Category),
		logging.F(logging.FieldAmount, rec.Amount))
	return rec, a.persistLocked("add_record")
}

// UpdateRecord applies upd to the first record with the given id. It returns nil
// when no record matches.
func (a *Account) UpdateRecord(id string, upd models.RecordUpdate) (*models.Record, error) {
	if err := validation.RecordUpdate(upd); err != nil {
		return nil, err
	}
	if upd.Timestamp != nil {
		ts, err := validation.CanonicalTimestamp("timestamp", *upd.Timestamp)
		if err != nil {
			return nil, err
		}
		upd.Timestamp = &ts
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.records {
		if a.records[i].ID != id {
			continue
		}
		upd.Apply(&a.records[i])
		updated := a.records[i]
		a.logger.Info("Record updated", logging.F(logging.FieldRecordID, id))
		return &updated, a.persistLocked("update_record")
	}
	return nil, nil
}

// DeleteRecord removes every record with the given id and reports whether any was
// removed. Nothing is persisted when nothing matched.
func (a *Account) DeleteRecord(id string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	kept := make([]models.Record, 0, len(a.records))
	for _, r := range a.records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(a.records) {
		return false, nil
	}
	a.records = kept

	a.logger.Info("Record deleted", logging.F(logging.FieldRecordID, id))
	return true, a.persistLocked("delete_record")
}

// AddLoan appends a new loan. An empty loanDate defaults to now and others are
// stored canonically. The due date is kept as entered; empty means none.
func (a *Account) AddLoan(name string, amount float64, loanDate, dueDate, note string) (models.LoanRecord, error) {
	if err := validation.Amount("amount", amount); err != nil {
		return models.LoanRecord{}, err
	}
	loanDate, err := validation.CanonicalTimestamp("loan_date", loanDate)
	if err != nil {
		return models.LoanRecord{}, err
	}
	if err := validation.Timestamp("due_date", dueDate); err != nil {
		return models.LoanRecord{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if loanDate == "" {
		loanDate = dateutils.FormatTimestamp(a.now())
	}
	loan := models.LoanRecord{
		ID:       a.newID(),
		Name:     name,
		Amount:   amount,
		LoanDate: loanDate,
		Note:     note,
	}
	if dueDate != "" {
		due := dueDate
		loan.DueDate = &due
	}
	a.loans = append(a.loans, loan)

	a.logger.Info("Loan added",
		logging.F(logging.FieldLoanID, loan.ID),
		logging.F(logging.FieldAmount, loan.Amount))
	return loan, a.persistLocked("add_loan")
}

// MarkLoanRepaid flags the first loan with the given id as repaid.
func (a *Account) MarkLoanRepaid(id string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.loans {
		if a.loans[i].ID == id {
			a.loans[i].Repaid = true
			a.logger.Info("Loan marked repaid", logging.F(logging.FieldLoanID, id))
			return true, a.persistLocked("mark_loan_repaid")
		}
	}
	return false, nil
}

// DeleteLoan removes every loan with the given id.
func (a *Account) DeleteLoan(id string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	kept := make([]models.LoanRecord, 0, len(a.loans))
	for _, l := range a.loans {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(a.loans) {
		return false, nil
	}
	a.loans = kept

	a.logger.Info("Loan deleted", logging.F(logging.FieldLoanID, id))
	return true, a.persistLocked("delete_loan")
}

// SetThresholds updates the warning and urgent balance thresholds.
// urgent <= warn is expected but not enforced.
func (a *Account) SetThresholds(warn, urgent float64) error {
	if err := validation.Finite("threshold_warn", warn); err != nil {
		return err
	}
	if err := validation.Finite("threshold_urgent", urgent); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.settings.ThresholdWarn = warn
	a.settings.ThresholdUrgent = urgent
	if urgent > warn {
		a.logger.Warn("Urgent threshold is above the warning threshold",
			logging.F("threshold_warn", warn),
			logging.F("threshold_urgent", urgent))
	}
	return a.persistLocked("set_thresholds")
}

// SetInitialBalance updates the opening balance.
func (a *Account) SetInitialBalance(amount float64) error {
	if err := validation.Finite("initial_balance", amount); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.settings.InitialBalance = amount
	return a.persistLocked("set_initial_balance")
}

// ScheduleDailyReminder stores the daily reminder preference. The time is advisory;
// nothing is scheduled from it.
func (a *Account) ScheduleDailyReminder(timeHHMM string, enabled bool) error {
	if err := validation.ReminderTime(timeHHMM); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.settings.ReminderEnabled = enabled
	a.settings.ReminderTime = timeHHMM
	return a.persistLocked("schedule_daily_reminder")
}

// AddOverconsumptionCategory flags category as one to watch.
func (a *Account) AddOverconsumptionCategory(category string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.overcats[category] = struct{}{}
	return a.persistLocked("add_overconsumption_category")
}

// RemoveOverconsumptionCategory unflags category. Removing a non-member is a no-op.
func (a *Account) RemoveOverconsumptionCategory(category string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.overcats[category]; !ok {
		return nil
	}
	delete(a.overcats, category)
	return a.persistLocked("remove_overconsumption_category")
}

// IsOverconsumptionCategory reports whether category is currently flagged.
func (a *Account) IsOverconsumptionCategory(category string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.overcats[category]
	return ok
}

// Balance returns initial_balance + income - expense over all current records.
// It is recomputed on every call.
func (a *Account) Balance() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var tally models.Tally
	tally.AddAll(a.records)
	return tally.BalanceFrom(a.settings.InitialBalance)
}

// View returns an independent copy of the complete state.
func (a *Account) View() models.Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshotLocked()
}

// Records returns a copy of the records in insertion order.
func (a *Account) Records() []models.Record {
	return a.View().Records
}

// Loans returns a copy of the loans in insertion order.
func (a *Account) Loans() []models.LoanRecord {
	return a.View().Loans
}

// Settings returns the current settings.
func (a *Account) Settings() models.Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings
}

// OverconsumptionCategories returns the flagged categories, sorted.
func (a *Account) OverconsumptionCategories() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return models.SortedCategories(a.overcats)
}

// FindRecord returns the first record with the given id.
func (a *Account) FindRecord(id string) (models.Record, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, r := range a.records {
		if r.ID == id {
			return r, true
		}
	}
	return models.Record{}, false
}

// StorePath returns the location of the persisted snapshot.
func (a *Account) StorePath() string {
	return a.store.Path()
}
