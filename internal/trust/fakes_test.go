package trust

import (
	"context"
	"sync"
	"time"

	"github.com/imadgeboyega/kiekky-matching/internal/events"
)

type memoryRepository struct {
	mu            sync.Mutex
	states        map[int64]*UserState
	activity      map[int64]*Activity
	recent        map[int64]int
	verifications []*Verification
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		states:   make(map[int64]*UserState),
		activity: make(map[int64]*Activity),
		recent:   make(map[int64]int),
	}
}

func (r *memoryRepository) addUser(id int64, verified, photo bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[id] = &UserState{IsVerified: verified, HasPrimaryPhoto: photo}
}

func (r *memoryRepository) GetUserState(ctx context.Context, userID int64) (*UserState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.states[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := *state
	out.Approved = make(map[string]bool)
	for _, v := range r.verifications {
		if v.UserID == userID && v.Status == StatusApproved {
			out.Approved[v.VerificationType] = true
		}
	}
	return &out, nil
}

func (r *memoryRepository) GetActivity(ctx context.Context, userID int64, since time.Time) (*Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.activity[userID]; ok {
		out := *a
		return &out, nil
	}
	return &Activity{}, nil
}

func (r *memoryRepository) CountMessagesSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recent[userID], nil
}

func (r *memoryRepository) CreateVerification(ctx context.Context, v *Verification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v.ID = int64(len(r.verifications) + 1)
	stored := *v
	r.verifications = append(r.verifications, &stored)
	return nil
}

func (r *memoryRepository) GetPendingVerification(ctx context.Context, userID int64, verificationType string) (*Verification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.verifications) - 1; i >= 0; i-- {
		v := r.verifications[i]
		if v.UserID == userID && v.VerificationType == verificationType && v.Status == StatusPending {
			out := *v
			return &out, nil
		}
	}
	return nil, ErrVerificationNotFound
}

func (r *memoryRepository) UpdateVerification(ctx context.Context, v *Verification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, stored := range r.verifications {
		if stored.ID == v.ID {
			updated := *v
			r.verifications[i] = &updated
			return nil
		}
	}
	return ErrVerificationNotFound
}

func (r *memoryRepository) SetEmailVerified(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state, ok := r.states[userID]; ok {
		state.IsVerified = true
	}
	return nil
}

type publishedEvent struct {
	Type    events.EventType
	Payload map[string]interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) PublishBestEffort(ctx context.Context, eventType events.EventType, payload map[string]interface{}, opts ...events.Option) string {
	p.mu.Lock()
	defer p.mu.Unlock()
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
