package matching

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/imadgeboyega/kiekky-matching/internal/events"
)

type memoryRepository struct {
	mu        sync.Mutex
	snapshots map[int64]*Snapshot
	vectors   map[int64]*FeatureVector
	swiped    map[int64]map[int64]bool
	saves     int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		snapshots: make(map[int64]*Snapshot),
		vectors:   make(map[int64]*FeatureVector),
		swiped:    make(map[int64]map[int64]bool),
	}
}

func (m *memoryRepository) addUser(id int64, profile *Profile) *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if profile != nil {
		profile.UserID = id
	}
	s := &Snapshot{
		User:    &User{ID: id, Email: "user@example.com", CreatedAt: time.Now()},
		Profile: profile,
	}
	m.snapshots[id] = s
	return s
}

func (m *memoryRepository) LoadSnapshot(ctx context.Context, userID int64, since time.Time) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snapshots[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return s, nil
}

func (m *memoryRepository) GetVector(ctx context.Context, userID int64) (*FeatureVector, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vectors[userID]
	if !ok {
		return nil, ErrVectorNotFound
	}
	return v, nil
}

func (m *memoryRepository) GetVectors(ctx context.Context, userIDs []int64) (map[int64]*FeatureVector, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]*FeatureVector)
	for _, id := range userIDs {
		if v, ok := m.vectors[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (m *memoryRepository) SaveVector(ctx context.Context, vector *FeatureVector) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors[vector.UserID] = vector
	m.saves++
	return nil
}

func (m *memoryRepository) ListStaleUsers(ctx context.Context, olderThan time.Time, limit int) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0)
	for id := range m.snapshots {
		if v, ok := m.vectors[id]; !ok || v.ComputedAt.Before(olderThan) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (m *memoryRepository) UnswipedUserIDs(ctx context.Context, userID int64, limit int) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0)
	for id := range m.snapshots {
		if id == userID || m.swiped[userID][id] {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

type publishedEvent struct {
	Type    events.EventType
	Payload map[string]interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	fail   bool
}

func (p *recordingPublisher) PublishBestEffort(ctx context.Context, eventType events.EventType, payload map[string]interface{}, opts ...events.Option) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return ""
	}
	p.events = append(p.events, publishedEvent{Type: eventType, Payload: payload})
	return "1-0"
}

func (p *recordingPublisher) ofType(t events.EventType) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]publishedEvent, 0)
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func timePtr(t time.Time) *time.Time { return &t }

func vectorWith(age, minAge, maxAge int, interests, values []string) *FeatureVector {
	return &FeatureVector{
		Demographics: Demographics{Age: age, Gender: "Female"},
		Preferences: Preferences{
			AgeRange:   AgeRange{Min: minAge, Max: maxAge},
			DistanceKM: 50,
			Intent:     DefaultIntent,
		},
		Interests: interests,
		Values:    values,
		Behavioral: BehavioralSignals{
			ReplyLatencyAvgMinutes: DefaultReplyLatency,
		},
		TrustScore: 0.5,
	}
}
