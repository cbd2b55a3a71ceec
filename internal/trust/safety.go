package trust

import (
	"context"
	"fmt"
	"time"

	"github.com/imadgeboyega/kiekky-matching/internal/common/logger"
	"github.com/imadgeboyega/kiekky-matching/internal/events"
)

const (
	RiskLow    = "low"
	RiskMedium = "medium"

	AlertHighMessageFrequency = "high_message_frequency"
)

// SafetyMonitor watches for abusive activity patterns
type SafetyMonitor struct {
	repo            Repository
	publisher       Publisher
	messagesPerHour int
	logger          logger.Logger
	now             func() time.Time
}

func NewSafetyMonitor(repo Repository, publisher Publisher, messagesPerHour int, log logger.Logger) *SafetyMonitor {
	if messagesPerHour <= 0 {
		messagesPerHour = 50
	}
	return &SafetyMonitor{
		repo:            repo,
		publisher:       publisher,
		messagesPerHour: messagesPerHour,
		logger:          log,
		now:             time.Now,
	}
}

// MonitorUser checks the last hour of activity
func (m *SafetyMonitor) MonitorUser(ctx context.Context, userID int64) (*SafetyReport, error) {
	if _, err := m.repo.GetUserState(ctx, userID); err != nil {
		return nil, err
	}

	now := m.now().UTC()
	recent, err := m.repo.CountMessagesSince(ctx, userID, now.Add(-time.Hour))
	if err != nil {
		return nil, err
	}

	report := &SafetyReport{
		UserID:      userID,
		Alerts:      []Alert{},
		RiskLevel:   RiskLow,
		MonitoredAt: now,
	}
	if recent > m.messagesPerHour {
		report.Alerts = append(report.Alerts, Alert{
			Type:     AlertHighMessageFrequency,
			Severity: "medium",
			Message:  fmt.Sprintf("User sent %d messages in the last hour", recent),
		})
	}
	if len(report.Alerts) > 0 {
		report.RiskLevel = RiskMedium
		recordSafetyAlert(AlertHighMessageFrequency)
	}
	return report, nil
}

// TriggerEmergency publishes an emergency for downstream responders
func (m *SafetyMonitor) TriggerEmergency(ctx context.Context, userID int64, emergencyType string, details map[string]interface{}) string {
	id := m.publisher.PublishBestEffort(ctx, events.EmergencyTriggered, map[string]interface{}{
		"user_id":        userID,
		"emergency_type": emergencyType,
		"details":        details,
		"triggered_at":   m.now().UTC().Format(time.RFC3339),
	}, events.WithActor(userID))

	m.logger.Warn("emergency triggered", map[string]interface{}{
		"user_id":        userID,
		"emergency_type": emergencyType,
	})
	return id
}
