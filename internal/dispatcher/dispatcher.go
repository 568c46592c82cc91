// Package dispatcher routes control commands, such as the viewport and
// photo lines read from stdin in watch mode, to their registered
// handlers. Handlers run synchronously by default; registration options
// add buffering, backpressure and debug logging per command.
package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Event is one parsed control line.
type Event struct {
	Command   string
	Args      []string
	Timestamp time.Time
}

// HandlerFunc processes an event and returns a result for the caller.
type HandlerFunc func(Event) (any, error)

// Logger is the minimal logging surface the dispatcher needs.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type registration struct {
	queueSize int
	blocking  bool
	logged    bool
}

// Option adjusts how a command's handler is registered.
type Option func(*registration)

// Buffered runs the handler on its own goroutine behind a queue of the
// given size. Dispatch then returns "queued" instead of the handler's
// result.
func Buffered(size int) Option {
	return func(r *registration) { r.queueSize = size }
}

// Blocking makes a buffered handler wait for queue space rather than
// dropping events when the queue is full.
func Blocking() Option {
	return func(r *registration) { r.blocking = true }
}

// Logged wraps the handler with debug logging and timing.
func Logged() Option {
	return func(r *registration) { r.logged = true }
}

// Dispatcher maps command names to handlers and reports queue metrics
// through the global OTel meter.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	logger   Logger

	queueDepth metric.Int64ObservableGauge
	processed  metric.Int64Counter
	dropped    metric.Int64Counter

	mu     sync.RWMutex
	queues map[string]chan Event
}

// New creates a Dispatcher. Metrics come from the global OTel meter and
// are no-ops when no provider is installed.
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		queues:   make(map[string]chan Event),
		logger:   logger,
	}
	if err := d.instrument(meter()); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dispatcher) instrument(m metric.Meter) error {
	var err error

	d.queueDepth, err = m.Int64ObservableGauge(
		"dispatcher.queue.size",
		metric.WithDescription("Current number of events in queue"),
	)
	if err != nil {
		return fmt.Errorf("creating queue size gauge: %w", err)
	}

	if _, err = m.RegisterCallback(d.observeQueues, d.queueDepth); err != nil {
		return fmt.Errorf("registering queue callback: %w", err)
	}

	d.processed, err = m.Int64Counter(
		"dispatcher.events.processed",
		metric.WithDescription("Total events processed"),
	)
	if err != nil {
		return fmt.Errorf("creating processed counter: %w", err)
	}

	d.dropped, err = m.Int64Counter(
		"dispatcher.events.dropped",
		metric.WithDescription("Total events dropped due to full queue"),
	)
	if err != nil {
		return fmt.Errorf("creating dropped counter: %w", err)
	}

	return nil
}

func (d *Dispatcher) observeQueues(_ context.Context, o metric.Observer) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for cmd, q := range d.queues {
		o.ObserveInt64(d.queueDepth, int64(len(q)),
			metric.WithAttributes(attribute.String("command", cmd)))
	}
	return nil
}

// Register binds a handler to a command. Options are applied inside-out,
// so a Buffered Logged handler logs the enqueue, not the processing.
func (d *Dispatcher) Register(command string, h HandlerFunc, opts ...Option) {
	var reg registration
	for _, opt := range opts {
		opt(&reg)
	}

	if reg.queueSize > 0 {
		h = d.buffered(command, reg, h)
	}
	if reg.logged {
		h = d.logged(command, h)
	}

	d.handlers[command] = h
}

// Dispatch routes an event to its handler.
func (d *Dispatcher) Dispatch(e Event) (any, error) {
	h, ok := d.handlers[e.Command]
	if !ok {
		return nil, fmt.Errorf("unknown command: %s", e.Command)
	}
	return h(e)
}

// HasHandler reports whether the command has a registered handler.
func (d *Dispatcher) HasHandler(command string) bool {
	_, ok := d.handlers[command]
	return ok
}

func (d *Dispatcher) buffered(command string, reg registration, h HandlerFunc) HandlerFunc {
	queue := make(chan Event, reg.queueSize)

	d.mu.Lock()
	d.queues[command] = queue
	d.mu.Unlock()

	attrs := metric.WithAttributes(attribute.String("command", command))

	go func() {
		for e := range queue {
			h(e)
			d.processed.Add(context.Background(), 1, attrs)
		}
	}()

	if reg.blocking {
		return func(e Event) (any, error) {
			queue <- e
			return "queued", nil
		}
	}

	return func(e Event) (any, error) {
		select {
		case queue <- e:
			return "queued", nil
		default:
			d.dropped.Add(context.Background(), 1, attrs)
			return nil, fmt.Errorf("queue full: %s", command)
		}
	}
}

func (d *Dispatcher) logged(command string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		start := time.Now()
		d.logger.Debug("handling event", "command", command, "args", len(e.Args))

		result, err := h(e)
		if err != nil {
			d.logger.Error("event failed", "command", command, "duration", time.Since(start), "error", err)
			return result, err
		}

		d.logger.Debug("event complete", "command", command, "duration", time.Since(start))
		return result, nil
	}
}
