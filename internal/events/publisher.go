// internal/events/publisher.go
// Publisher appends envelopes to the stream

package events

import (
	"context"
	"fmt"

	"github.com/imadgeboyega/kiekky-matching/internal/common/logger"
)

// Publisher writes events to a Stream
type Publisher struct {
	stream Stream
	logger logger.Logger
}

// NewPublisher creates a publisher over the given stream
func NewPublisher(stream Stream, log logger.Logger) *Publisher {
	return &Publisher{
		stream: stream,
		logger: log.WithFields(map[string]interface{}{"component": "event_publisher", "stream": stream.Name()}),
	}
}

// Publish appends a prepared envelope and returns the stream message id
func (p *Publisher) Publish(ctx context.Context, env *Envelope) (string, error) {
	values, err := env.values()
	if err != nil {
		recordPublishFailure(env.EventType)
		return "", fmt.Errorf("encode %s: %w", env.EventType, err)
	}

	id, err := p.stream.Append(ctx, values)
	if err != nil {
		recordPublishFailure(env.EventType)
		return "", err
	}

	recordPublished(env.EventType)
	p.logger.Debug("event published", map[string]interface{}{
		"event_type": env.EventType,
		"event_id":   env.EventID,
		"message_id": id,
	})
	return id, nil
}

// PublishEvent builds an envelope and publishes it
func (p *Publisher) PublishEvent(ctx context.Context, eventType EventType, payload map[string]interface{}, opts ...Option) (string, error) {
	return p.Publish(ctx, NewEnvelope(eventType, payload, opts...))
}

// PublishBestEffort publishes and swallows failures after logging them.
// Side-channel events use it so the triggering operation never fails on the bus.
func (p *Publisher) PublishBestEffort(ctx context.Context, eventType EventType, payload map[string]interface{}, opts ...Option) string {
	id, err := p.PublishEvent(ctx, eventType, payload, opts...)
	if err != nil {
		p.logger.Warn("event publish failed", map[string]interface{}{
			"event_type": eventType,
			"error":      err.Error(),
		})
		return ""
	}
	return id
}
