package trust

import (
	"context"
	"time"

	"github.com/imadgeboyega/kiekky-matching/internal/common/logger"
	"github.com/imadgeboyega/kiekky-matching/internal/events"
)

const activityWindow = 30 * 24 * time.Hour

// Publisher is the part of the event bus this package emits on
type Publisher interface {
	PublishBestEffort(ctx context.Context, eventType events.EventType, payload map[string]interface{}, opts ...events.Option) string
}

// System assesses trust levels and runs the verification workflow
type System struct {
	repo                Repository
	publisher           Publisher
	behavioralThreshold float64
	logger              logger.Logger
	now                 func() time.Time
}

func NewSystem(repo Repository, publisher Publisher, behavioralThreshold float64, log logger.Logger) *System {
	if behavioralThreshold <= 0 {
		behavioralThreshold = 0.8
	}
	return &System{
		repo:                repo,
		publisher:           publisher,
		behavioralThreshold: behavioralThreshold,
		logger:              log,
		now:                 time.Now,
	}
}

// BehavioralTrustScore rewards recent messaging and lasting matches
func (s *System) BehavioralTrustScore(ctx context.Context, userID int64) (float64, error) {
	activity, err := s.repo.GetActivity(ctx, userID, s.now().Add(-activityWindow))
	if err != nil {
		return 0, err
	}
	return behavioralScore(activity), nil
}

func behavioralScore(a *Activity) float64 {
	score := 0.5
	if a.MessagesSent > 10 {
		score += 0.1
	}
	if a.TotalMatches > 0 {
		score += float64(a.ActiveMatches) / float64(a.TotalMatches) * 0.2
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func (s *System) flags(ctx context.Context, userID int64) (Flags, float64, error) {
	state, err := s.repo.GetUserState(ctx, userID)
	if err != nil {
		return Flags{}, 0, err
	}
	score, err := s.BehavioralTrustScore(ctx, userID)
	if err != nil {
		return Flags{}, 0, err
	}

	return Flags{
		EmailVerified:   state.IsVerified || state.Approved[VerificationEmail],
		PhotoVerified:   state.HasPrimaryPhoto || state.Approved[VerificationPhoto] || state.Approved[VerificationVideo],
		IDVerified:      state.Approved[VerificationIDDocument],
		BehavioralTrust: state.Approved[VerificationBackgroundCheck] || score >= s.behavioralThreshold,
	}, score, nil
}

// AssessUser reports the user's level and what the next level needs
func (s *System) AssessUser(ctx context.Context, userID int64) (*Assessment, error) {
	flags, score, err := s.flags(ctx, userID)
	if err != nil {
		return nil, err
	}

	level := Assess(flags)
	assessment := &Assessment{
		UserID:               userID,
		Level:                level,
		Name:                 level.Name(),
		Description:          level.Description(),
		Capabilities:         level.Capabilities(),
		Flags:                flags,
		BehavioralTrustScore: score,
		NextRequirements:     []Requirement{},
	}
	if level < MaxLevel {
		next := level + 1
		assessment.NextLevel = &next
		for _, r := range RequiredVerifications(level, next) {
			if !flags.Has(r) {
				assessment.NextRequirements = append(assessment.NextRequirements, r)
			}
		}
	}
	recordAssessment(level)
	return assessment, nil
}

func (s *System) CanAccessFeature(ctx context.Context, userID int64, feature string) (bool, Level, error) {
	flags, _, err := s.flags(ctx, userID)
	if err != nil {
		return false, LevelBasic, err
	}
	level := Assess(flags)
	return CanAccess(level, feature), level, nil
}

// RequestVerification records a pending request for review
func (s *System) RequestVerification(ctx context.Context, userID int64, verificationType string, evidence map[string]interface{}) (*Verification, error) {
	if _, ok := VerificationTypes[verificationType]; !ok {
		return nil, ErrUnknownVerificationType
	}
	if _, err := s.repo.GetUserState(ctx, userID); err != nil {
		return nil, err
	}
	if evidence == nil {
		evidence = map[string]interface{}{}
	}

	v := &Verification{
		UserID:           userID,
		VerificationType: verificationType,
		Status:           StatusPending,
		Evidence:         Evidence(evidence),
		RequestedAt:      s.now().UTC(),
	}
	if err := s.repo.CreateVerification(ctx, v); err != nil {
		return nil, err
	}
	recordVerification(verificationType, StatusPending)

	s.publisher.PublishBestEffort(ctx, events.VerificationRequested, map[string]interface{}{
		"user_id":           userID,
		"verification_type": verificationType,
		"evidence":          evidence,
		"requested_at":      v.RequestedAt.Format(time.RFC3339),
	}, events.WithActor(userID))

	return v, nil
}

// ApproveVerification approves the latest pending request and re-assesses the user
func (s *System) ApproveVerification(ctx context.Context, userID int64, verificationType string, approvedBy int64) (Level, error) {
	v, err := s.review(ctx, userID, verificationType, approvedBy, StatusApproved, nil)
	if err != nil {
		return LevelBasic, err
	}
	if verificationType == VerificationEmail {
		if err := s.repo.SetEmailVerified(ctx, userID); err != nil {
			return LevelBasic, err
		}
	}

	assessment, err := s.AssessUser(ctx, userID)
	if err != nil {
		return LevelBasic, err
	}

	s.publisher.PublishBestEffort(ctx, events.VerificationApproved, map[string]interface{}{
		"user_id":           userID,
		"verification_id":   v.ID,
		"verification_type": verificationType,
		"approved_by":       approvedBy,
	}, events.WithActor(approvedBy))
	s.publisher.PublishBestEffort(ctx, events.TrustLevelUpdated, map[string]interface{}{
		"user_id":               userID,
		"new_trust_level":       int(assessment.Level),
		"verification_approved": verificationType,
		"approved_by":           approvedBy,
	}, events.WithActor(approvedBy))

	s.logger.Info("verification approved", map[string]interface{}{
		"user_id":           userID,
		"verification_type": verificationType,
		"trust_level":       int(assessment.Level),
	})
	return assessment.Level, nil
}

func (s *System) RejectVerification(ctx context.Context, userID int64, verificationType string, reviewedBy int64, reason string) error {
	if _, err := s.review(ctx, userID, verificationType, reviewedBy, StatusRejected, &reason); err != nil {
		return err
	}

	s.publisher.PublishBestEffort(ctx, events.VerificationRejected, map[string]interface{}{
		"user_id":           userID,
		"verification_type": verificationType,
		"reviewed_by":       reviewedBy,
		"reason":            reason,
	}, events.WithActor(reviewedBy))
	return nil
}

func (s *System) review(ctx context.Context, userID int64, verificationType string, reviewer int64, status string, reason *string) (*Verification, error) {
	if _, ok := VerificationTypes[verificationType]; !ok {
		return nil, ErrUnknownVerificationType
	}
	if reviewer == userID {
		return nil, ErrSelfReview
	}
	v, err := s.repo.GetPendingVerification(ctx, userID, verificationType)
	if err != nil {
		return nil, err
	}

	reviewedAt := s.now().UTC()
	v.Status = status
	v.Reason = reason
	v.ReviewedBy = &reviewer
	v.ReviewedAt = &reviewedAt
	if err := s.repo.UpdateVerification(ctx, v); err != nil {
		return nil, err
	}
	recordVerification(verificationType, status)
	return v, nil
}
