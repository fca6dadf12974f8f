// Package container provides dependency injection for the expense-manager application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"
	"sync"

	"fjacquet/expense-manager/internal/account"
	"fjacquet/expense-manager/internal/config"
	"fjacquet/expense-manager/internal/logging"
	"fjacquet/expense-manager/internal/metrics"
	"fjacquet/expense-manager/internal/reminder"
	"fjacquet/expense-manager/internal/statistics"
	"fjacquet/expense-manager/internal/store"
)

// Option customizes container construction.
type Option func(*options)

type options struct {
	logger    logging.Logger
	persister store.Persister
}

// WithLogger replaces the logrus logger built from the configuration.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithPersister replaces the JSON file store.
func WithPersister(p store.Persister) Option {
	return func(o *options) {
		o.persister = p
	}
}

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation, apart from the reminder services it
// hands out, which it tracks so Close can stop them.
type Container struct {
	logger  logging.Logger
	config  *config.Config
	store   store.Persister
	account *account.Account
	stats   *statistics.Engine
	metrics *metrics.Metrics

	mu          sync.Mutex
	reminders   []*reminder.Service
	dispatchers []reminder.Dispatcher
}

// NewContainer creates and wires all application dependencies.
// This is the main entry point for dependency injection in the application.
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	// Create logger first as it's needed by other components
	logger := o.logger
	if logger == nil {
		logger = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	persister := o.persister
	if persister == nil {
		persister = store.NewJSONStore(cfg.Data.File, logger)
	}

	acc := account.New(persister, logger,
		account.WithMetrics(m),
		account.WithBackupDir(cfg.Data.BackupDir))

	stats := statistics.NewEngine(acc, logger)

	logger.Debug("Container initialized successfully",
		logging.F(logging.FieldFile, persister.Path()),
		logging.F("metrics_enabled", cfg.Metrics.Enabled))

	return &Container{
		logger:  logger,
		config:  cfg,
		store:   persister,
		account: acc,
		stats:   stats,
		metrics: m,
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the persistence store backing the account.
func (c *Container) GetStore() store.Persister {
	return c.store
}

// GetAccount returns the account.
func (c *Container) GetAccount() *account.Account {
	return c.account
}

// GetStatistics returns the statistics engine reading the account.
func (c *Container) GetStatistics() *statistics.Engine {
	return c.stats
}

// GetMetrics returns the prometheus collectors, or nil when metrics are disabled.
func (c *Container) GetMetrics() *metrics.Metrics {
	return c.metrics
}

// NewReminderService creates a stopped reminder service for the account. The
// listener is called from a single delivery goroutine. opts are applied after the
// configured interval, timeout and metrics. The service and its dispatcher are
// stopped by Close.
func (c *Container) NewReminderService(listener reminder.Listener, opts ...reminder.Option) *reminder.Service {
	dispatcher := reminder.NewSerialDispatcher(listener, c.config.Reminder.QueueSize, c.logger)
	base := []reminder.Option{
		reminder.WithInterval(c.config.ReminderInterval()),
		reminder.WithStopTimeout(c.config.ReminderStopTimeout()),
		reminder.WithMetrics(c.metrics),
	}
	svc := reminder.NewService(c.account, dispatcher, c.logger, append(base, opts...)...)

	c.mu.Lock()
	c.reminders = append(c.reminders, svc)
	c.dispatchers = append(c.dispatchers, dispatcher)
	c.mu.Unlock()
	return svc
}

// Close stops every reminder service handed out and drains their dispatchers.
// It is safe to call more than once.
func (c *Container) Close() error {
	c.mu.Lock()
	reminders, dispatchers := c.reminders, c.dispatchers
	c.reminders, c.dispatchers = nil, nil
	c.mu.Unlock()

	for _, svc := range reminders {
		svc.Stop()
	}
	for _, d := range dispatchers {
		d.Close()
	}
	c.logger.Debug("Container closed")
	return nil
}
