package trust

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	GetUserState(ctx context.Context, userID int64) (*UserState, error)
	GetActivity(ctx context.Context, userID int64, since time.Time) (*Activity, error)
	CountMessagesSince(ctx context.Context, userID int64, since time.Time) (int, error)

	CreateVerification(ctx context.Context, v *Verification) error
	GetPendingVerification(ctx context.Context, userID int64, verificationType string) (*Verification, error)
	UpdateVerification(ctx context.Context, v *Verification) error
	SetEmailVerified(ctx context.Context, userID int64) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetUserState(ctx context.Context, userID int64) (*UserState, error) {
	var state UserState
	err := r.db.GetContext(ctx, &state, `
		SELECT u.is_verified,
			EXISTS (
				SELECT 1 FROM profile_photos ph WHERE ph.user_id = u.id AND ph.is_primary = true
			) AS has_primary_photo
		FROM users u
		WHERE u.id = $1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user state: %w", err)
	}

	var approved []string
	err = r.db.SelectContext(ctx, &approved, `
		SELECT DISTINCT verification_type FROM user_verifications WHERE user_id = $1 AND status = $2
	`, userID, StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("list approved verifications: %w", err)
	}
	state.Approved = make(map[string]bool, len(approved))
	for _, t := range approved {
		state.Approved[t] = true
	}
	return &state, nil
}

func (r *postgresRepository) GetActivity(ctx context.Context, userID int64, since time.Time) (*Activity, error) {
	var activity Activity
	err := r.db.GetContext(ctx, &activity, `
		SELECT
			(SELECT COUNT(*) FROM messages WHERE sender_id = $1 AND created_at >= $2) AS messages_sent,
			COUNT(*) AS total_matches,
			COUNT(*) FILTER (WHERE is_active = true) AS active_matches
		FROM matches
		WHERE (user1_id = $1 OR user2_id = $1) AND created_at >= $2
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return &activity, nil
}

func (r *postgresRepository) CountMessagesSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM messages WHERE sender_id = $1 AND created_at >= $2
	`, userID, since)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) CreateVerification(ctx context.Context, v *Verification) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO user_verifications (user_id, verification_type, status, evidence, requested_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, v.UserID, v.VerificationType, v.Status, v.Evidence, v.RequestedAt).Scan(&v.ID)
	if err != nil {
		return fmt.Errorf("create verification: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetPendingVerification(ctx context.Context, userID int64, verificationType string) (*Verification, error) {
	var v Verification
	err := r.db.GetContext(ctx, &v, `
		SELECT id, user_id, verification_type, status, evidence, reason, requested_at, reviewed_by, reviewed_at
		FROM user_verifications
		WHERE user_id = $1 AND verification_type = $2 AND status = $3
		ORDER BY requested_at DESC
		LIMIT 1
	`, userID, verificationType, StatusPending)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVerificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pending verification: %w", err)
	}
	return &v, nil
}

func (r *postgresRepository) UpdateVerification(ctx context.Context, v *Verification) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE user_verifications
		SET status = $2, reason = $3, reviewed_by = $4, reviewed_at = $5
		WHERE id = $1
	`, v.ID, v.Status, v.Reason, v.ReviewedBy, v.ReviewedAt)
	if err != nil {
		return fmt.Errorf("update verification: %w", err)
	}
	return nil
}

func (r *postgresRepository) SetEmailVerified(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET is_verified = true WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("set email verified: %w", err)
	}
	return nil
}

// Migrate creates the tables this package owns
func Migrate(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS user_verifications (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			verification_type VARCHAR(32) NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			evidence JSONB NOT NULL DEFAULT '{}',
			reason TEXT,
			requested_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			reviewed_by BIGINT,
			reviewed_at TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_user_verifications_user ON user_verifications (user_id, status);
	`)
	if err != nil {
		return fmt.Errorf("migrate trust: %w", err)
	}
	return nil
}
