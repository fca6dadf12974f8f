package reminder

import (
	"sync"

	"fjacquet/expense-manager/internal/logging"
)

// DefaultQueueSize is the notification buffer of a SerialDispatcher.
const DefaultQueueSize = 64

// Dispatcher delivers notifications to a Listener.
type Dispatcher interface {
	Dispatch(n Notification)
	Close()
}

// SyncDispatcher calls the listener inline on the emitting goroutine. A panicking
// listener is logged and does not reach the caller.
type SyncDispatcher struct {
	listener Listener
	logger   logging.Logger
}

// NewSyncDispatcher returns a dispatcher that calls listener directly.
func NewSyncDispatcher(listener Listener, logger logging.Logger) *SyncDispatcher {
	if logger == nil {
		logger = logging.Nop()
	}
	return &SyncDispatcher{
		listener: listener,
		logger:   logger.WithField(logging.FieldComponent, "dispatcher"),
	}
}

// Dispatch implements Dispatcher.
func (d *SyncDispatcher) Dispatch(n Notification) {
	deliver(d.listener, d.logger, n)
}

// Close implements Dispatcher.
func (d *SyncDispatcher) Close() {}

// SerialDispatcher queues notifications and delivers them from one goroutine, in
// emission order. Dispatch never blocks: when the queue is full the notification
// is logged and dropped.
type SerialDispatcher struct {
	listener  Listener
	logger    logging.Logger
	queue     chan Notification
	done      chan struct{}
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewSerialDispatcher starts the delivery goroutine. queueSize <= 0 uses
// DefaultQueueSize.
func NewSerialDispatcher(listener Listener, queueSize int, logger logging.Logger) *SerialDispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = logging.Nop()
	}
	d := &SerialDispatcher{
		listener: listener,
		logger:   logger.WithField(logging.FieldComponent, "dispatcher"),
		queue:    make(chan Notification, queueSize),
		done:     make(chan struct{}),
	}
	go d.run()
	return d
}

// Dispatch implements Dispatcher.
func (d *SerialDispatcher) Dispatch(n Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("Notification dispatched after close", logging.F(logging.FieldKind, n.Kind))
		return
	}

	select {
	case d.queue <- n:
	default:
		d.logger.Warn("Notification queue full, dropping notification",
			logging.F(logging.FieldKind, n.Kind))
	}
}

// Close stops accepting notifications, delivers what is queued and waits for the
// delivery goroutine to exit.
func (d *SerialDispatcher) Close() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})
	<-d.done
}

func (d *SerialDispatcher) run() {
	defer close(d.done)
	for n := range d.queue {
		deliver(d.listener, d.logger, n)
	}
}

// deliver calls listener, recovering and logging a panic.
func deliver(listener Listener, logger logging.Logger, n Notification) {
	if listener == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Notification listener failed",
				logging.F(logging.FieldKind, n.Kind),
				logging.F(logging.FieldError, r))
		}
	}()
	listener(n.Kind, n.Message)
}
