// internal/events/stream.go
// Stream is the durable log the bus is built on

package events

import (
	"context"
	"errors"
	"time"
)

// ErrNoGroup is returned when reading through a group that was never created
var ErrNoGroup = errors.New("consumer group does not exist")

// Message is one raw stream entry
type Message struct {
	ID     string
	Values map[string]interface{}
}

// ReadOptions controls a group read. Pending re-reads entries already delivered
// to this consumer but never acknowledged.
type ReadOptions struct {
	Count   int64
	Block   time.Duration
	Pending bool
}

// Stream is an append-only log with consumer groups and a pending entries list
type Stream interface {
	Name() string
	Append(ctx context.Context, values map[string]interface{}) (string, error)
	// EnsureGroup creates the group at the stream tail. An existing group is not an error.
	EnsureGroup(ctx context.Context, group string) error
	ReadGroup(ctx context.Context, group, consumer string, opts ReadOptions) ([]Message, error)
	Ack(ctx context.Context, group string, ids ...string) error
	// Len reports the number of entries currently held
	Len(ctx context.Context) (int64, error)
}
