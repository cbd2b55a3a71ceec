// internal/events/consumer.go
// Consumer reads the stream through a consumer group with at-least-once delivery

package events

import (
	"context"
	"errors"
	"time"

	"github.com/imadgeboyega/kiekky-matching/internal/common/logger"
)

// Handler processes one event. Returning an error leaves the message pending.
type Handler interface {
	HandleEvent(ctx context.Context, event *Envelope) error
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, event *Envelope) error

func (f HandlerFunc) HandleEvent(ctx context.Context, event *Envelope) error {
	return f(ctx, event)
}

// Delivery is one decoded message handed to a consumer
type Delivery struct {
	MessageID string
	Event     *Envelope
}

// ConsumerConfig identifies the consumer and tunes its reads
type ConsumerConfig struct {
	Group        string
	Name         string
	Count        int64
	Block        time.Duration
	MaxAttempts  int
	RetryBackoff time.Duration
}

func (c *ConsumerConfig) setDefaults() {
	if c.Count <= 0 {
		c.Count = 10
	}
	if c.Block <= 0 {
		c.Block = 5 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = time.Second
	}
}

// Consumer is one named member of a consumer group
type Consumer struct {
	stream  Stream
	cfg     ConsumerConfig
	handler Handler
	logger  logger.Logger

	retryPending bool
	// backoff is set when a handler or ack failed in the last batch
	backoff  bool
	attempts map[string]int
}

// NewConsumer creates a consumer. Call EnsureGroup or Run before reading.
func NewConsumer(stream Stream, cfg ConsumerConfig, handler Handler, log logger.Logger) *Consumer {
	cfg.setDefaults()
	return &Consumer{
		stream:  stream,
		cfg:     cfg,
		handler: handler,
		logger: log.WithFields(map[string]interface{}{
			"component": "event_consumer",
			"group":     cfg.Group,
			"consumer":  cfg.Name,
		}),
		// replay whatever a previous incarnation left unacknowledged
		retryPending: true,
		attempts:     make(map[string]int),
	}
}

// Group returns the consumer group name
func (c *Consumer) Group() string {
	return c.cfg.Group
}

// EnsureGroup creates the consumer group if needed
func (c *Consumer) EnsureGroup(ctx context.Context) error {
	return c.stream.EnsureGroup(ctx, c.cfg.Group)
}

// Consume reads up to count new messages, blocking up to block.
// Malformed messages are acknowledged and dropped.
func (c *Consumer) Consume(ctx context.Context, count int64, block time.Duration) ([]Delivery, error) {
	deliveries, _, err := c.read(ctx, ReadOptions{Count: count, Block: block})
	return deliveries, err
}

// Acknowledge marks a message as processed for this group
func (c *Consumer) Acknowledge(ctx context.Context, messageID string) error {
	delete(c.attempts, messageID)
	return c.stream.Ack(ctx, c.cfg.Group, messageID)
}

// read returns the decoded deliveries and the number of messages read
func (c *Consumer) read(ctx context.Context, opts ReadOptions) ([]Delivery, int, error) {
	msgs, err := c.stream.ReadGroup(ctx, c.cfg.Group, c.cfg.Name, opts)
	if err != nil {
		return nil, 0, err
	}

	deliveries := make([]Delivery, 0, len(msgs))
	for _, msg := range msgs {
		env, err := decodeEnvelope(msg.Values)
		if err != nil {
			c.logger.Error("dropping malformed event", map[string]interface{}{
				"message_id": msg.ID,
				"error":      err.Error(),
			})
			if ackErr := c.stream.Ack(ctx, c.cfg.Group, msg.ID); ackErr != nil {
				c.logger.Warn("failed to ack malformed event", map[string]interface{}{"message_id": msg.ID, "error": ackErr.Error()})
			}
			continue
		}
		deliveries = append(deliveries, Delivery{MessageID: msg.ID, Event: env})
	}
	return deliveries, len(msgs), nil
}

// ProcessBatch handles pending retries first, then one batch of new messages.
// A full page of pending messages keeps the replay going on the next call.
// It returns the number of messages acknowledged.
func (c *Consumer) ProcessBatch(ctx context.Context) (int, error) {
	var batch []Delivery
	c.backoff = false

	if c.retryPending {
		c.retryPending = false
		pending, n, err := c.read(ctx, ReadOptions{Count: c.cfg.Count, Pending: true})
		if err != nil {
			c.retryPending = true
			return 0, err
		}
		if int64(n) >= c.cfg.Count {
			c.retryPending = true
		}
		batch = append(batch, pending...)
	}

	block := c.cfg.Block
	if len(batch) > 0 {
		block = 0
	}
	fresh, err := c.Consume(ctx, c.cfg.Count, block)
	if err != nil {
		return c.handle(ctx, batch), err
	}
	batch = append(batch, fresh...)

	return c.handle(ctx, batch), nil
}

func (c *Consumer) handle(ctx context.Context, batch []Delivery) int {
	acked := 0
	for _, d := range batch {
		err := c.handler.HandleEvent(ctx, d.Event)
		if err == nil {
			if ackErr := c.Acknowledge(ctx, d.MessageID); ackErr != nil {
				c.logger.Warn("ack failed", map[string]interface{}{"message_id": d.MessageID, "error": ackErr.Error()})
				c.retryPending = true
				c.backoff = true
				continue
			}
			recordConsumed(c.cfg.Group, d.Event.EventType, "ok")
			acked++
			continue
		}

		c.attempts[d.MessageID]++
		attempts := c.attempts[d.MessageID]
		fields := map[string]interface{}{
			"message_id": d.MessageID,
			"event_type": d.Event.EventType,
			"attempt":    attempts,
			"error":      err.Error(),
		}

		if attempts >= c.cfg.MaxAttempts {
			c.logger.Error("giving up on event", fields)
			recordConsumed(c.cfg.Group, d.Event.EventType, "dropped")
			if ackErr := c.Acknowledge(ctx, d.MessageID); ackErr != nil {
				c.retryPending = true
				c.backoff = true
			}
			continue
		}

		c.logger.Warn("event handling failed, will retry", fields)
		recordConsumed(c.cfg.Group, d.Event.EventType, "failed")
		c.retryPending = true
		c.backoff = true
	}
	return acked
}

// Run ensures the group and processes batches until ctx is cancelled
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("consumer starting", nil)

	for {
		err := c.EnsureGroup(ctx)
		if err == nil {
			break
		}
		c.logger.Warn("consumer group not ready", map[string]interface{}{"error": err.Error()})
		if !c.sleep(ctx) {
			return ctx.Err()
		}
	}

	for {
		if ctx.Err() != nil {
			c.logger.Info("consumer stopped", nil)
			return ctx.Err()
		}

		if _, err := c.ProcessBatch(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("consumer stopped", nil)
				return ctx.Err()
			}
			if errors.Is(err, ErrNoGroup) {
				if gErr := c.EnsureGroup(ctx); gErr != nil {
					c.logger.Warn("recreating consumer group failed", map[string]interface{}{"error": gErr.Error()})
				}
			}
			c.logger.Warn("consume failed", map[string]interface{}{"error": err.Error()})
			if !c.sleep(ctx) {
				return ctx.Err()
			}
			continue
		}

		if c.backoff && !c.sleep(ctx) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) sleep(ctx context.Context) bool {
	timer := time.NewTimer(c.cfg.RetryBackoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
