// internal/events/envelope.go
// Envelope wraps every event written to the stream

package events

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// EventVersion is the envelope schema version
const EventVersion = "1.0"

// Envelope is the wire shape of one event
type Envelope struct {
	EventID       string                 `json:"event_id"`
	EventType     EventType              `json:"event_type"`
	EventVersion  string                 `json:"event_version"`
	OccurredAt    time.Time              `json:"occurred_at"`
	ActorID       string                 `json:"actor_id,omitempty"`
	EntityID      string                 `json:"entity_id,omitempty"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Metadata      map[string]interface{} `json:"metadata"`
	Payload       map[string]interface{} `json:"payload"`
}

// Option customises an envelope at construction
type Option func(*Envelope)

// WithActor sets the user that caused the event
func WithActor(userID int64) Option {
	return func(e *Envelope) { e.ActorID = strconv.FormatInt(userID, 10) }
}

// WithEntity sets the id of the entity the event is about
func WithEntity(entityID string) Option {
	return func(e *Envelope) { e.EntityID = entityID }
}

// WithCorrelation links the event to a request or a parent event
func WithCorrelation(correlationID string) Option {
	return func(e *Envelope) { e.CorrelationID = correlationID }
}

// WithMetadata merges metadata into the envelope
func WithMetadata(metadata map[string]interface{}) Option {
	return func(e *Envelope) {
		for k, v := range metadata {
			e.Metadata[k] = v
		}
	}
}

// NewEnvelope builds an envelope with a fresh id and timestamp
func NewEnvelope(eventType EventType, payload map[string]interface{}, opts ...Option) *Envelope {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	e := &Envelope{
		EventID:      uuid.New().String(),
		EventType:    eventType,
		EventVersion: EventVersion,
		OccurredAt:   time.Now().UTC(),
		Metadata:     map[string]interface{}{},
		Payload:      payload,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ActorUserID parses the actor id as a user id
func (e *Envelope) ActorUserID() (int64, bool) {
	if e.ActorID == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(e.ActorID, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// PayloadInt64 reads a numeric payload field. JSON numbers decode as float64.
func (e *Envelope) PayloadInt64(key string) (int64, bool) {
	switch v := e.Payload[key].(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case json.Number:
		i, err := v.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(v, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// PayloadString reads a string payload field
func (e *Envelope) PayloadString(key string) string {
	s, _ := e.Payload[key].(string)
	return s
}

// values flattens the envelope into stream fields. Nested maps travel as JSON.
func (e *Envelope) values() (map[string]interface{}, error) {
	metadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	return map[string]interface{}{
		"event_id":       e.EventID,
		"event_type":     string(e.EventType),
		"event_version":  e.EventVersion,
		"occurred_at":    e.OccurredAt.Format(time.RFC3339Nano),
		"actor_id":       e.ActorID,
		"entity_id":      e.EntityID,
		"correlation_id": e.CorrelationID,
		"metadata":       string(metadata),
		"payload":        string(payload),
	}, nil
}

// decodeEnvelope rebuilds an envelope from stream fields
func decodeEnvelope(values map[string]interface{}) (*Envelope, error) {
	field := func(name string) string {
		switch v := values[name].(type) {
		case string:
			return v
		case []byte:
			return string(v)
		case nil:
			return ""
		default:
			return fmt.Sprint(v)
		}
	}

	eventType := field("event_type")
	if eventType == "" {
		return nil, fmt.Errorf("missing event_type")
	}

	e := &Envelope{
		EventID:       field("event_id"),
		EventType:     EventType(eventType),
		EventVersion:  field("event_version"),
		ActorID:       field("actor_id"),
		EntityID:      field("entity_id"),
		CorrelationID: field("correlation_id"),
		Metadata:      map[string]interface{}{},
		Payload:       map[string]interface{}{},
	}

	if ts := field("occurred_at"); ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("invalid occurred_at %q: %w", ts, err)
		}
		e.OccurredAt = t
	}
	if raw := field("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &e.Metadata); err != nil {
			return nil, fmt.Errorf("invalid metadata: %w", err)
		}
	}
	if raw := field("payload"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &e.Payload); err != nil {
			return nil, fmt.Errorf("invalid payload: %w", err)
		}
	}
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	if e.Payload == nil {
		e.Payload = map[string]interface{}{}
	}

	return e, nil
}
