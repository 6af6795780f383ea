package mailer

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/qamaits/identity-server/internal/domain"
)

// ErrQueueFull is reported on the result channel when the dispatch queue
// has no room for another message.
var ErrQueueFull = errors.New("mailer queue is full")

// ErrDispatcherClosed is reported on the result channel when a message is
// submitted after Close.
var ErrDispatcherClosed = errors.New("mailer dispatcher is closed")

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 2 * time.Second
)

type task struct {
	msg    Message
	link   domain.ProviderLink
	result chan error
}

// Dispatcher delivers messages through a fixed-size worker pool. Send
// never blocks the producer; each submission gets a result channel the
// caller can await or ignore. Transient failures retry with exponential
// backoff, and exhausted sends go to the dead-letter sink.
type Dispatcher struct {
	transport   Transport
	deadLetter  DeadLetter
	logger      *zap.Logger
	tasks       chan task
	wg          sync.WaitGroup
	mu          sync.Mutex
	closed      bool
	maxAttempts int
	baseDelay   time.Duration
}

// NewDispatcher starts a dispatcher with the given pool dimensions.
func NewDispatcher(transport Transport, deadLetter DeadLetter, logger *zap.Logger, workers, queueSize int) *Dispatcher {
	d := &Dispatcher{
		transport:   transport,
		deadLetter:  deadLetter,
		logger:      logger,
		tasks:       make(chan task, queueSize),
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Send enqueues a message for delivery through the provider link. The
// returned channel receives exactly one value: nil on delivery, or the
// final error after retries are exhausted.
func (d *Dispatcher) Send(msg Message, link domain.ProviderLink) <-chan error {
	result := make(chan error, 1)

	// The closed check and the enqueue happen under the same lock so a
	// concurrent Close cannot close the channel between them.
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		result <- ErrDispatcherClosed
		return result
	}
	select {
	case d.tasks <- task{msg: msg, link: link, result: result}:
		d.mu.Unlock()
	default:
		d.mu.Unlock()
		d.logger.Warn("mailer queue full, dropping message",
			zap.String("to", msg.To),
			zap.String("provider", link.Name),
		)
		result <- ErrQueueFull
	}
	return result
}

// Close stops accepting messages and waits for in-flight deliveries.
// Sends arriving afterwards report ErrDispatcherClosed instead of being
// delivered. Safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	close(d.tasks)
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for t := range d.tasks {
		err := d.deliver(t.msg, t.link)
		if err != nil {
			d.logger.Error("message delivery failed permanently",
				zap.String("to", t.msg.To),
				zap.String("provider", t.link.Name),
				zap.Error(err),
			)
			d.pushDeadLetter(t, err)
		}
		t.result <- err
	}
}

func (d *Dispatcher) deliver(msg Message, link domain.ProviderLink) error {
	raw, err := msg.Encode()
	if err != nil {
		// Encoding never succeeds on retry.
		return err
	}

	var lastErr error
	for attempt := 0; attempt < d.maxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(d.baseDelay << (attempt - 1))
		}

		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		lastErr = d.transport.Send(ctx, raw, &link)
		cancel()

		if lastErr == nil {
			return nil
		}
		d.logger.Warn("message delivery attempt failed",
			zap.String("to", msg.To),
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr),
		)
	}
	return lastErr
}

func (d *Dispatcher) pushDeadLetter(t task, sendErr error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entry := DeadLetterEntry{
		To:       t.msg.To,
		Subject:  t.msg.Subject,
		Provider: t.link.Name,
		Error:    sendErr.Error(),
		FailedAt: time.Now().UTC(),
		Attempts: d.maxAttempts,
	}
	if err := d.deadLetter.Push(ctx, entry); err != nil {
		d.logger.Error("failed to record dead letter", zap.Error(err))
	}
}
