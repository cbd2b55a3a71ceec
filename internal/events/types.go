// internal/events/types.go
// Event catalogue shared by every producer and consumer of the dating stream

package events

// EventType names one kind of domain event on the stream
type EventType string

// User lifecycle
const (
	UserRegistered    EventType = "UserRegistered"
	EmailVerified     EventType = "EmailVerified"
	ProfileCompleted  EventType = "ProfileCompleted"
	TrustLevelUpdated EventType = "TrustLevelUpdated"
	UserSuspended     EventType = "UserSuspended"
)

// Discovery & matching
const (
	ProfileViewed EventType = "ProfileViewed"
	SwipeLiked    EventType = "SwipeLiked"
	SwipePassed   EventType = "SwipePassed"
	UserMatched   EventType = "UserMatched"
	MatchExpired  EventType = "MatchExpired"
)

// Communication
const (
	MessageSent       EventType = "MessageSent"
	MessageRead       EventType = "MessageRead"
	ConversationEnded EventType = "ConversationEnded"
	UserUnmatched     EventType = "UserUnmatched"
)

// Monetization
const (
	SubscriptionStarted   EventType = "SubscriptionStarted"
	SubscriptionUpgraded  EventType = "SubscriptionUpgraded"
	SubscriptionCancelled EventType = "SubscriptionCancelled"
	BoostActivated        EventType = "BoostActivated"
	GiftSent              EventType = "GiftSent"
)

// Safety & moderation
const (
	ProfileReported       EventType = "ProfileReported"
	ContentFlagged        EventType = "ContentFlagged"
	ModerationActionTaken EventType = "ModerationActionTaken"
	EmergencyTriggered    EventType = "EmergencyTriggered"
)

// Matching intelligence
const (
	MatchSuggestionRequested  EventType = "MatchSuggestionRequested"
	MatchSuggestionsGenerated EventType = "MatchSuggestionsGenerated"
	FeatureVectorUpdated      EventType = "FeatureVectorUpdated"
)

// Verification
const (
	VerificationRequested EventType = "VerificationRequested"
	VerificationApproved  EventType = "VerificationApproved"
	VerificationRejected  EventType = "VerificationRejected"
)

// Analytics
const (
	AnalyticsReportGenerated EventType = "AnalyticsReportGenerated"
)

// Consumer groups reading the dating stream. Each group sees every event.
const (
	GroupNotification = "notification_group"
	GroupAI           = "ai_group"
	GroupAnalytics    = "analytics_group"
	GroupModeration   = "moderation_group"
)

// DefaultStream is the stream name used when none is configured
const DefaultStream = "dating_events"
