package trust

import (
	"context"
	"errors"

	"github.com/imadgeboyega/kiekky-matching/internal/common/logger"
	"github.com/imadgeboyega/kiekky-matching/internal/events"
)

// ModerationHandler reacts to reports in the moderation consumer group
type ModerationHandler struct {
	monitor *SafetyMonitor
	logger  logger.Logger
}

func NewModerationHandler(monitor *SafetyMonitor, log logger.Logger) *ModerationHandler {
	return &ModerationHandler{monitor: monitor, logger: log}
}

func (h *ModerationHandler) HandleEvent(ctx context.Context, event *events.Envelope) error {
	switch event.EventType {
	case events.ProfileReported:
		return h.profileReported(ctx, event)
	case events.ContentFlagged:
		h.logger.Warn("content flagged", map[string]interface{}{
			"event_id":     event.EventID,
			"content_id":   event.PayloadString("content_id"),
			"content_type": event.PayloadString("content_type"),
			"flag_reason":  event.PayloadString("flag_reason"),
		})
	}
	return nil
}

func (h *ModerationHandler) profileReported(ctx context.Context, event *events.Envelope) error {
	reported, ok := event.PayloadInt64("reported_user_id")
	if !ok {
		reported, ok = event.PayloadInt64("user_id")
	}
	if !ok {
		h.logger.Warn("profile report without user", map[string]interface{}{"event_id": event.EventID})
		return nil
	}

	report, err := h.monitor.MonitorUser(ctx, reported)
	if errors.Is(err, ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	h.logger.Warn("profile reported", map[string]interface{}{
		"event_id":         event.EventID,
		"reported_user_id": reported,
		"reporter_id":      event.Payload["reporter_id"],
		"reason":           event.PayloadString("reason"),
		"risk_level":       report.RiskLevel,
		"alerts":           len(report.Alerts),
	})
	return nil
}
