// internal/events/memory_stream.go
// In-process Stream used when Redis is unavailable and in tests

package events

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// pollInterval bounds how long a blocked read sleeps between wakeups
const pollInterval = 50 * time.Millisecond

type memoryGroup struct {
	cursor  int
	pending map[string]pendingEntry
}

type pendingEntry struct {
	consumer string
	index    int
}

// MemoryStream keeps the log in memory with Redis-like group semantics:
// a group starts at the tail, each entry goes to one consumer of the group,
// and unacknowledged entries stay pending for that consumer.
type MemoryStream struct {
	mu      sync.Mutex
	name    string
	seq     int64
	entries []Message
	groups  map[string]*memoryGroup
	notify  chan struct{}
}

// NewMemoryStream creates an empty stream
func NewMemoryStream(name string) *MemoryStream {
	if name == "" {
		name = DefaultStream
	}
	return &MemoryStream{
		name:   name,
		groups: make(map[string]*memoryGroup),
		notify: make(chan struct{}),
	}
}

func (s *MemoryStream) Name() string {
	return s.name
}

func (s *MemoryStream) Append(ctx context.Context, values map[string]interface{}) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	id := fmt.Sprintf("%d-%d", time.Now().UnixMilli(), s.seq)

	copied := make(map[string]interface{}, len(values))
	for k, v := range values {
		copied[k] = v
	}
	s.entries = append(s.entries, Message{ID: id, Values: copied})

	close(s.notify)
	s.notify = make(chan struct{})
	return id, nil
}

func (s *MemoryStream) EnsureGroup(ctx context.Context, group string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[group]; ok {
		return nil
	}
	s.groups[group] = &memoryGroup{
		cursor:  len(s.entries),
		pending: make(map[string]pendingEntry),
	}
	return nil
}

func (s *MemoryStream) ReadGroup(ctx context.Context, group, consumer string, opts ReadOptions) ([]Message, error) {
	var deadline time.Time
	if opts.Block > 0 && !opts.Pending {
		deadline = time.Now().Add(opts.Block)
	}

	for {
		s.mu.Lock()
		g, ok := s.groups[group]
		if !ok {
			s.mu.Unlock()
			return nil, ErrNoGroup
		}

		var out []Message
		if opts.Pending {
			out = s.pendingFor(g, consumer, opts.Count)
		} else {
			out = s.deliverNew(g, consumer, opts.Count)
		}
		wait := s.notify
		s.mu.Unlock()

		if len(out) > 0 || deadline.IsZero() {
			return out, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, nil
		}
		if remaining > pollInterval {
			remaining = pollInterval
		}

		timer := time.NewTimer(remaining)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-wait:
		case <-timer.C:
		}
		timer.Stop()
	}
}

// deliverNew must be called with s.mu held
func (s *MemoryStream) deliverNew(g *memoryGroup, consumer string, count int64) []Message {
	var out []Message
	for g.cursor < len(s.entries) {
		if count > 0 && int64(len(out)) >= count {
			break
		}
		msg := s.entries[g.cursor]
		g.pending[msg.ID] = pendingEntry{consumer: consumer, index: g.cursor}
		out = append(out, msg)
		g.cursor++
	}
	return out
}

// pendingFor must be called with s.mu held
func (s *MemoryStream) pendingFor(g *memoryGroup, consumer string, count int64) []Message {
	indexes := make([]int, 0, len(g.pending))
	for _, p := range g.pending {
		if p.consumer == consumer {
			indexes = append(indexes, p.index)
		}
	}
	sort.Ints(indexes)

	var out []Message
	for _, idx := range indexes {
		if count > 0 && int64(len(out)) >= count {
			break
		}
		out = append(out, s.entries[idx])
	}
	return out
}

func (s *MemoryStream) Ack(ctx context.Context, group string, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[group]
	if !ok {
		return ErrNoGroup
	}
	for _, id := range ids {
		delete(g.pending, id)
	}
	return nil
}

// Len returns the number of entries in the log
func (s *MemoryStream) Len(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.entries)), nil
}

// PendingCount returns the number of unacknowledged entries of a group
func (s *MemoryStream) PendingCount(group string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.groups[group]; ok {
		return len(g.pending)
	}
	return 0
}

var _ Stream = (*MemoryStream)(nil)
