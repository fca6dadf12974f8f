// Package reminder polls an account for low balances and due loans and emits
// notifications through a Dispatcher.
//
// Threshold notifications are edge-triggered: one urgent notification per
// continuous dip at or below the urgent threshold, one warn notification per
// continuous dip into the warning band, and a silent reset once the balance is back
// above the warning threshold. Due loans are reported on every poll.
package reminder

import (
	"context"
	"errors"
	"sync"
	"time"

	"fjacquet/expense-manager/internal/dateutils"
	"fjacquet/expense-manager/internal/logging"
	"fjacquet/expense-manager/internal/metrics"
	"fjacquet/expense-manager/internal/models"
)

// Defaults
const (
	DefaultInterval    = 10 * time.Second
	DefaultStopTimeout = time.Second
)

// ErrAlreadyStarted is returned by Start when the poll loop is already running.
var ErrAlreadyStarted = errors.New("reminder service already started")

// Account is the read side of the account the service polls.
type Account interface {
	Balance() float64
	Settings() models.Settings
	Loans() []models.LoanRecord
	IsOverconsumptionCategory(category string) bool
}

// State is the hysteresis state of the threshold check.
type State struct {
	WarnedLow    bool
	WarnedUrgent bool
}

// Option configures a Service.
type Option func(*Service)

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithStopTimeout bounds how long Stop waits for the loop to exit.
func WithStopTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.stopTimeout = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMetrics attaches prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithRefresh sets a function the poll loop calls before every poll, e.g. to
// reload the account from disk.
func WithRefresh(refresh func()) Option {
	return func(s *Service) {
		s.refresh = refresh
	}
}

// Service is the reminder engine of one account.
type Service struct {
	account     Account
	dispatcher  Dispatcher
	logger      logging.Logger
	metrics     *metrics.Metrics
	refresh     func()
	now         func() time.Time
	interval    time.Duration
	stopTimeout time.Duration

	mu    sync.Mutex
	state State

	runMu    sync.Mutex
	started  bool
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// NewService creates a stopped Service. A nil dispatcher discards notifications.
func NewService(account Account, dispatcher Dispatcher, logger logging.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	if dispatcher == nil {
		dispatcher = NewSyncDispatcher(nil, nil)
	}
	s := &Service{
		account:     account,
		dispatcher:  dispatcher,
		logger:      logger.WithField(logging.FieldComponent, "reminder"),
		now:         time.Now,
		interval:    DefaultInterval,
		stopTimeout: DefaultStopTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current hysteresis flags.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CheckThresholds evaluates the balance against the thresholds and returns the
// notification emitted, if any.
func (s *Service) CheckThresholds() (Notification, bool) {
	balance := s.account.Balance()
	settings := s.account.Settings()
	s.metrics.ObserveBalance(balance)

	s.mu.Lock()
	n, emit := s.transition(balance, settings.ThresholdWarn, settings.ThresholdUrgent)
	s.mu.Unlock()

	if emit {
		s.emit(n)
	}
	return n, emit
}

// transition applies one poll to the hysteresis state. Callers hold s.mu.
func (s *Service) transition(balance, warn, urgent float64) (Notification, bool) {
	switch {
	case balance <= urgent:
		// a direct drop into the urgent band does not also report warn
		emit := !s.state.WarnedUrgent
		s.state.WarnedUrgent = true
		s.state.WarnedLow = true
		if emit {
			return urgentNotification(balance), true
		}
	case balance <= warn:
		emit := !s.state.WarnedLow
		s.state.WarnedLow = true
		s.state.WarnedUrgent = false
		if emit {
			return warnNotification(balance), true
		}
	default:
		s.state = State{}
	}
	return Notification{}, false
}

// CheckOverconsumption emits an over notification when the record's category is
// currently flagged, regardless of the record's own mark. It reports whether it
// fired.
func (s *Service) CheckOverconsumption(record models.Record) bool {
	if !s.account.IsOverconsumptionCategory(record.Category) {
		return false
	}
	s.emit(overNotification(record))
	return true
}

// CheckLoans emits a loan notification for every unrepaid loan due today or
// earlier and returns how many fired. Due dates that do not parse are skipped.
func (s *Service) CheckLoans() int {
	today := s.now()
	fired := 0
	for _, loan := range s.account.Loans() {
		if loan.Repaid || !loan.HasDueDate() {
			continue
		}
		due, err := dateutils.ParseISO(*loan.DueDate)
		if err != nil {
			s.logger.Debug("Skipping loan with malformed due date",
				logging.F(logging.FieldLoanID, loan.ID))
			continue
		}
		if dateutils.CompareDates(due, today) <= 0 {
			s.emit(loanNotification(loan))
			fired++
		}
	}
	return fired
}

// Poll runs one threshold and loan check. A panic in either check is logged and
// does not stop the other.
func (s *Service) Poll() {
	s.guard("thresholds", func() { s.CheckThresholds() })
	s.guard("loans", func() { s.CheckLoans() })
}

func (s *Service) guard(check string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.CheckError()
			s.logger.Error("Reminder check failed",
				logging.F("check", check),
				logging.F(logging.FieldError, r))
		}
	}()
	fn()
}

func (s *Service) emit(n Notification) {
	s.metrics.Notification(string(n.Kind))
	s.logger.Info("Reminder", logging.F(logging.FieldKind, n.Kind), logging.F("message", n.Message))
	s.dispatcher.Dispatch(n)
}

// Start launches the poll loop. It polls once immediately, then every interval,
// until Stop is called or ctx is done. The refresh function, if any, runs before
// each poll.
func (s *Service) Start(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx)

	s.logger.Info("Reminder service started", logging.F("interval", s.interval.String()))
	return nil
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if s.refresh != nil {
			s.guard("refresh", s.refresh)
		}
		s.Poll()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Stop cancels the poll loop and waits for it to finish its current iteration,
// at most the stop timeout. It is safe to call more than once, or before Start.
func (s *Service) Stop() {
	s.runMu.Lock()
	cancel, done := s.cancel, s.done
	s.runMu.Unlock()
	if cancel == nil {
		return
	}

	s.stopOnce.Do(func() {
		cancel()
		select {
		case <-done:
			s.logger.Info("Reminder service stopped")
		case <-time.After(s.stopTimeout):
			s.logger.Warn("Reminder service did not stop in time",
				logging.F(logging.FieldDuration, s.stopTimeout.String()))
		}
	})
}

// Done is closed once the poll loop has exited. It is nil before Start.
func (s *Service) Done() <-chan struct{} {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.done
}
