package worker

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/contactkeeper/contact-service/internal/events"
)

// DefaultQueueSize bounds the number of events waiting for delivery.
const DefaultQueueSize = 256

// ErrQueueFull is returned to the publisher when the worker cannot accept more events.
var ErrQueueFull = errors.New("notification queue full")

// EventProcessor is the work performed for each queued event.
type EventProcessor interface {
	Subscriptions() []events.EventType
	Handle(ctx context.Context, event events.Event) error
}

// NotificationWorker moves event processing off the request path. Publishers only enqueue;
// Run drains the queue on its own goroutine.
type NotificationWorker struct {
	processor EventProcessor
	logger    *zap.Logger
	queue     chan events.Event
}

// NewNotificationWorker builds a worker with a bounded queue.
func NewNotificationWorker(processor EventProcessor, logger *zap.Logger, queueSize int) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &NotificationWorker{
		processor: processor,
		logger:    logger,
		queue:     make(chan events.Event, queueSize),
	}
}

// Register subscribes the worker to every event type its processor handles.
func (w *NotificationWorker) Register(dispatcher events.Dispatcher) {
	for _, eventType := range w.processor.Subscriptions() {
		dispatcher.Subscribe(eventType, w.enqueue)
	}
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run processes events until ctx is cancelled, then drains whatever is already queued.
func (w *NotificationWorker) Run(ctx context.Context) {
	w.logger.Info("notification worker started", zap.Int("queue_size", cap(w.queue)))
	for {
		select {
		case event := <-w.queue:
			w.process(ctx, event)
		case <-ctx.Done():
			w.drain()
			w.logger.Info("notification worker stopped")
			return
		}
	}
}

func (w *NotificationWorker) drain() {
	for {
		select {
		case event := <-w.queue:
			w.process(context.Background(), event)
		default:
			return
		}
	}
}

func (w *NotificationWorker) process(ctx context.Context, event events.Event) {
	if err := w.processor.Handle(ctx, event); err != nil {
		w.logger.Warn("notification failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}
