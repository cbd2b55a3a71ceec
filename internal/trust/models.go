package trust

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUnknownVerificationType = errors.New("unknown verification type")
	ErrVerificationNotFound    = errors.New("no pending verification request")
	ErrSelfReview              = errors.New("cannot review own verification")
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Evidence is the free-form material submitted with a verification request
type Evidence map[string]interface{}

func (e Evidence) Value() (driver.Value, error) {
	if e == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(e)
}

func (e *Evidence) Scan(value interface{}) error {
	switch data := value.(type) {
	case nil:
		*e = Evidence{}
		return nil
	case []byte:
		return json.Unmarshal(data, e)
	case string:
		return json.Unmarshal([]byte(data), e)
	default:
		return fmt.Errorf("cannot scan %T into Evidence", value)
	}
}

type Verification struct {
	ID               int64      `json:"id" db:"id"`
	UserID           int64      `json:"user_id" db:"user_id"`
	VerificationType string     `json:"verification_type" db:"verification_type"`
	Status           string     `json:"status" db:"status"`
	Evidence         Evidence   `json:"evidence" db:"evidence"`
	Reason           *string    `json:"reason,omitempty" db:"reason"`
	RequestedAt      time.Time  `json:"requested_at" db:"requested_at"`
	ReviewedBy       *int64     `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt       *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
}

// UserState is what the repository knows about a user's verifications
type UserState struct {
	IsVerified      bool `db:"is_verified"`
	HasPrimaryPhoto bool `db:"has_primary_photo"`
	Approved        map[string]bool
}

// Activity is the recent behavior the behavioral trust score reads
type Activity struct {
	MessagesSent  int `db:"messages_sent"`
	TotalMatches  int `db:"total_matches"`
	ActiveMatches int `db:"active_matches"`
}

type Assessment struct {
	UserID               int64         `json:"user_id"`
	Level                Level         `json:"level"`
	Name                 string        `json:"name"`
	Description          string        `json:"description"`
	Capabilities         []string      `json:"capabilities"`
	Flags                Flags         `json:"flags"`
	BehavioralTrustScore float64       `json:"behavioral_trust_score"`
	NextLevel            *Level        `json:"next_level,omitempty"`
	NextRequirements     []Requirement `json:"next_requirements"`
}

type Alert struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type SafetyReport struct {
	UserID      int64     `json:"user_id"`
	Alerts      []Alert   `json:"alerts"`
	RiskLevel   string    `json:"risk_level"`
	MonitoredAt time.Time `json:"monitored_at"`
}
