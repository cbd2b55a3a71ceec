package matching

import (
	"context"
	"errors"

	"github.com/imadgeboyega/kiekky-matching/internal/common/logger"
	"github.com/imadgeboyega/kiekky-matching/internal/events"
)

// vectorEvents change inputs of the feature vector for the listed payload users
var vectorEvents = map[events.EventType][]string{
	events.UserRegistered:   {"user_id"},
	events.ProfileCompleted: {"user_id"},
	events.SwipeLiked:       {"swiper_id"},
	events.SwipePassed:      {"swiper_id"},
	events.UserMatched:      {"user1_id", "user2_id"},
	events.UserUnmatched:    {"user1_id", "user2_id"},
	events.MessageSent:      {"sender_id", "recipient_id"},
}

// EventHandler keeps vectors current and answers suggestion requests.
// It runs in the ai consumer group.
type EventHandler struct {
	service Service
	logger  logger.Logger
}

func NewEventHandler(service Service, log logger.Logger) *EventHandler {
	return &EventHandler{service: service, logger: log}
}

func (h *EventHandler) HandleEvent(ctx context.Context, event *events.Envelope) error {
	if event.EventType == events.MatchSuggestionRequested {
		userID, ok := event.PayloadInt64("user_id")
		if !ok {
			userID, ok = event.ActorUserID()
		}
		if !ok {
			h.logger.Warn("suggestion request without user", map[string]interface{}{"event_id": event.EventID})
			return nil
		}
		_, err := h.service.GenerateSuggestions(ctx, userID)
		return ignoreUnknownUser(err)
	}

	keys, ok := vectorEvents[event.EventType]
	if !ok {
		return nil
	}

	for _, userID := range h.affectedUsers(event, keys) {
		if _, err := h.service.Refresh(ctx, userID); ignoreUnknownUser(err) != nil {
			return err
		}
	}
	return nil
}

func (h *EventHandler) affectedUsers(event *events.Envelope, keys []string) []int64 {
	seen := make(map[int64]bool, len(keys))
	users := make([]int64, 0, len(keys))
	for _, key := range keys {
		if id, ok := event.PayloadInt64(key); ok && !seen[id] {
			seen[id] = true
			users = append(users, id)
		}
	}
	if len(users) == 0 {
		if id, ok := event.ActorUserID(); ok {
			users = append(users, id)
		}
	}
	return users
}

// Unknown users cannot gain a vector by retrying
func ignoreUnknownUser(err error) error {
	if errors.Is(err, ErrUserNotFound) {
		return nil
	}
	return err
}
