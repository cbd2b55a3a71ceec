package analytics

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/imadgeboyega/kiekky-matching/internal/common/logger"
	"github.com/imadgeboyega/kiekky-matching/internal/events"
	"github.com/imadgeboyega/kiekky-matching/internal/matching"
)

const recentWindow = 30 * 24 * time.Hour

var journeyEvents = map[events.EventType]bool{
	events.UserRegistered:   true,
	events.ProfileCompleted: true,
	events.SwipeLiked:       true,
	events.UserMatched:      true,
	events.MessageSent:      true,
}

// EventCount is the number of events of one type seen by the tracker
type EventCount struct {
	EventType string `json:"event_type"`
	Count     int64  `json:"count"`
}

// Tracker counts events and keeps user journey analytics current.
// It runs in the analytics consumer group.
type Tracker struct {
	source matching.Source
	repo   Repository
	logger logger.Logger
	now    func() time.Time

	mu     sync.Mutex
	counts map[events.EventType]int64
}

func NewTracker(source matching.Source, repo Repository, log logger.Logger) *Tracker {
	return &Tracker{
		source: source,
		repo:   repo,
		logger: log,
		now:    time.Now,
		counts: make(map[events.EventType]int64),
	}
}

func (t *Tracker) HandleEvent(ctx context.Context, event *events.Envelope) error {
	t.count(event.EventType)

	if journeyEvents[event.EventType] {
		if userID, ok := journeyUser(event); ok {
			journey, err := t.Journey(ctx, userID)
			switch {
			case errors.Is(err, matching.ErrUserNotFound):
				t.logger.Warn("journey user not found", map[string]interface{}{"user_id": userID})
			case err != nil:
				return err
			default:
				t.logger.Info("updated journey analytics", map[string]interface{}{
					"user_id": userID,
					"stage":   journey.Stage,
				})
			}
		}
	}

	switch event.EventType {
	case events.UserMatched:
		return t.trackMatch(ctx, event)
	case events.ProfileReported:
		recordSafetyIncident(string(event.EventType))
		t.logger.Warn("safety incident tracked", map[string]interface{}{
			"event_id":         event.EventID,
			"reported_user_id": event.Payload["reported_user_id"],
		})
	case events.EmergencyTriggered:
		recordSafetyIncident(string(event.EventType))
		t.logger.Error("emergency tracked", map[string]interface{}{
			"user_id":        event.Payload["user_id"],
			"emergency_type": event.PayloadString("emergency_type"),
		})
	}
	return nil
}

func (t *Tracker) trackMatch(ctx context.Context, event *events.Envelope) error {
	for _, key := range []string{"user1_id", "user2_id"} {
		userID, ok := event.PayloadInt64(key)
		if !ok {
			continue
		}
		activity, err := t.activity(ctx, userID)
		if errors.Is(err, matching.ErrUserNotFound) {
			t.logger.Warn("matched user not found", map[string]interface{}{"user_id": userID})
			continue
		}
		if err != nil {
			return err
		}
		score := SuccessScore(*activity)
		recordSuccessScore(score)
		t.logger.Info("match conversion tracked", map[string]interface{}{
			"user_id":       userID,
			"success_score": score,
		})
	}
	return nil
}

// Journey computes the user's journey analytics from current data
func (t *Tracker) Journey(ctx context.Context, userID int64) (*Journey, error) {
	activity, err := t.activity(ctx, userID)
	if err != nil {
		return nil, err
	}

	journey := &Journey{
		UserID:            userID,
		RegisteredAt:      activity.Snapshot.User.CreatedAt,
		Stage:             Stage(*activity),
		ProfileCompletion: activity.Completion(),
		SuccessScore:      SuccessScore(*activity),
		EngagementScore:   EngagementScore(*activity),
		DaysToFirstMatch:  DaysToFirstMatch(*activity),
		ComputedAt:        t.now().UTC(),
	}
	recordJourney(journey.Stage)
	return journey, nil
}

// Counts returns the per-type totals seen so far, most frequent first
func (t *Tracker) Counts() []EventCount {
	t.mu.Lock()
	out := make([]EventCount, 0, len(t.counts))
	for eventType, n := range t.counts {
		out = append(out, EventCount{EventType: string(eventType), Count: n})
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].EventType < out[j].EventType
	})
	return out
}

func (t *Tracker) count(eventType events.EventType) {
	t.mu.Lock()
	t.counts[eventType]++
	t.mu.Unlock()
	recordEvent(string(eventType))
}

func (t *Tracker) activity(ctx context.Context, userID int64) (*Activity, error) {
	snapshot, err := t.source.LoadSnapshot(ctx, userID, t.now().Add(-recentWindow))
	if err != nil {
		return nil, err
	}
	milestones, err := t.repo.GetMilestones(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Activity{Snapshot: snapshot, Milestones: milestones}, nil
}

func journeyUser(event *events.Envelope) (int64, bool) {
	if id, ok := event.ActorUserID(); ok {
		return id, true
	}
	for _, key := range []string{"user_id", "swiper_id", "sender_id"} {
		if id, ok := event.PayloadInt64(key); ok {
			return id, true
		}
	}
	return 0, false
}
