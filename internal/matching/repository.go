package matching

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrVectorNotFound = errors.New("feature vector not found")
)

// VectorStore persists one vector per user
type VectorStore interface {
	GetVector(ctx context.Context, userID int64) (*FeatureVector, error)
	SaveVector(ctx context.Context, vector *FeatureVector) error
	GetVectors(ctx context.Context, userIDs []int64) (map[int64]*FeatureVector, error)
	ListStaleUsers(ctx context.Context, olderThan time.Time, limit int) ([]int64, error)
}

// Repository is the postgres read side for vectors and suggestions
type Repository interface {
	Source
	VectorStore
	UnswipedUserIDs(ctx context.Context, userID int64, limit int) ([]int64, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// Snapshot loading

func (r *postgresRepository) LoadSnapshot(ctx context.Context, userID int64, since time.Time) (*Snapshot, error) {
	var user User
	err := r.db.GetContext(ctx, &user, `SELECT id, email, is_verified, created_at FROM users WHERE id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	snapshot := &Snapshot{User: &user}

	profile, err := r.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	snapshot.Profile = profile

	if err := r.loadSwipeCounts(ctx, userID, since, snapshot); err != nil {
		return nil, err
	}
	if err := r.loadMatchCounts(ctx, userID, snapshot); err != nil {
		return nil, err
	}

	conversations, err := r.loadConversations(ctx, userID)
	if err != nil {
		return nil, err
	}
	snapshot.Conversations = conversations

	err = r.db.GetContext(ctx, &snapshot.RecentMessages, `
		SELECT COUNT(*) FROM messages WHERE sender_id = $1 AND created_at >= $2
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("count recent messages: %w", err)
	}

	return snapshot, nil
}

// ProfileColumns selects a Profile from profiles aliased as p
const ProfileColumns = `
	p.user_id, p.bio, p.date_of_birth, p.gender, p.looking_for, p.relationship_status,
	p.location, p.country, p.latitude, p.longitude, p.passport_latitude, p.passport_longitude,
	p.is_passport_enabled, p.max_distance, p.min_age, p.max_age, p.is_active, p.is_hidden,
	p.preferred_language, p.boost_expiry, p.interests, p."values",
	EXISTS (
		SELECT 1 FROM profile_photos ph WHERE ph.user_id = p.user_id AND ph.is_primary = true
	) AS has_primary_photo`

func (r *postgresRepository) loadProfile(ctx context.Context, userID int64) (*Profile, error) {
	var profile Profile
	err := r.db.GetContext(ctx, &profile, `SELECT `+ProfileColumns+` FROM profiles p WHERE p.user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &profile, nil
}

func (r *postgresRepository) loadSwipeCounts(ctx context.Context, userID int64, since time.Time, s *Snapshot) error {
	var counts struct {
		Likes        int `db:"likes"`
		Passes       int `db:"passes"`
		SuperLikes   int `db:"super_likes"`
		RecentLikes  int `db:"recent_likes"`
		RecentSwipes int `db:"recent_swipes"`
	}
	err := r.db.GetContext(ctx, &counts, `
		SELECT
			COUNT(*) FILTER (WHERE action = 'like') AS likes,
			COUNT(*) FILTER (WHERE action = 'pass') AS passes,
			COUNT(*) FILTER (WHERE action = 'super_like') AS super_likes,
			COUNT(*) FILTER (WHERE action IN ('like', 'super_like') AND created_at >= $2) AS recent_likes,
			COUNT(*) FILTER (WHERE created_at >= $2) AS recent_swipes
		FROM swipes
		WHERE swiper_id = $1
	`, userID, since)
	if err != nil {
		return fmt.Errorf("count swipes: %w", err)
	}
	s.Likes, s.Passes, s.SuperLikes = counts.Likes, counts.Passes, counts.SuperLikes
	s.RecentLikes, s.RecentSwipes = counts.RecentLikes, counts.RecentSwipes
	return nil
}

func (r *postgresRepository) loadMatchCounts(ctx context.Context, userID int64, s *Snapshot) error {
	var counts struct {
		Total  int `db:"total"`
		Active int `db:"active"`
	}
	err := r.db.GetContext(ctx, &counts, `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE is_active = true) AS active
		FROM matches
		WHERE user1_id = $1 OR user2_id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("count matches: %w", err)
	}
	s.TotalMatches, s.ActiveMatches = counts.Total, counts.Active
	return nil
}

func (r *postgresRepository) loadConversations(ctx context.Context, userID int64) ([]Conversation, error) {
	var messages []Message
	err := r.db.SelectContext(ctx, &messages, `
		SELECT m.conversation_id, m.sender_id, m.created_at
		FROM messages m
		JOIN conversation_participants cp ON cp.conversation_id = m.conversation_id
		WHERE cp.user_id = $1
		ORDER BY m.conversation_id, m.created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	var ids []int64
	err = r.db.SelectContext(ctx, &ids, `
		SELECT conversation_id FROM conversation_participants WHERE user_id = $1 ORDER BY conversation_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("load conversations: %w", err)
	}

	byID := make(map[int64][]Message, len(ids))
	for _, m := range messages {
		byID[m.ConversationID] = append(byID[m.ConversationID], m)
	}

	conversations := make([]Conversation, 0, len(ids))
	for _, id := range ids {
		conversations = append(conversations, Conversation{ID: id, Messages: byID[id]})
	}
	return conversations, nil
}

// Vector storage

// vectorRow keeps the JSONB raw so one bad row does not fail a batch
type vectorRow struct {
	UserID    int64     `db:"user_id"`
	Vector    []byte    `db:"feature_vector"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row *vectorRow) decode() (*FeatureVector, error) {
	var v FeatureVector
	if err := v.Scan(row.Vector); err != nil {
		recordCorruptVector()
		return nil, fmt.Errorf("decode vector for user %d: %w", row.UserID, err)
	}
	v.UserID = row.UserID
	return &v, nil
}

// GetVector returns ErrVectorNotFound for a missing or undecodable row
func (r *postgresRepository) GetVector(ctx context.Context, userID int64) (*FeatureVector, error) {
	var row vectorRow
	err := r.db.GetContext(ctx, &row, `
		SELECT user_id, feature_vector, updated_at FROM user_feature_vectors WHERE user_id = $1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVectorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vector: %w", err)
	}
	v, err := row.decode()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVectorNotFound, err)
	}
	return v, nil
}

// GetVectors leaves undecodable rows out of the result
func (r *postgresRepository) GetVectors(ctx context.Context, userIDs []int64) (map[int64]*FeatureVector, error) {
	out := make(map[int64]*FeatureVector, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`
		SELECT user_id, feature_vector, updated_at FROM user_feature_vectors WHERE user_id IN (?)
	`, userIDs)
	if err != nil {
		return nil, err
	}

	var rows []vectorRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("get vectors: %w", err)
	}
	for i := range rows {
		v, err := rows[i].decode()
		if err != nil {
			continue
		}
		out[v.UserID] = v
	}
	return out, nil
}

func (r *postgresRepository) SaveVector(ctx context.Context, vector *FeatureVector) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_feature_vectors (user_id, feature_vector, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET feature_vector = EXCLUDED.feature_vector, updated_at = EXCLUDED.updated_at
	`, vector.UserID, vector, vector.ComputedAt)
	if err != nil {
		return fmt.Errorf("save vector: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListStaleUsers(ctx context.Context, olderThan time.Time, limit int) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, `
		SELECT u.id
		FROM users u
		LEFT JOIN user_feature_vectors v ON v.user_id = u.id
		WHERE v.user_id IS NULL OR v.updated_at < $1
		ORDER BY v.updated_at NULLS FIRST, u.id
		LIMIT $2
	`, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("list stale users: %w", err)
	}
	return ids, nil
}

// Suggestions

func (r *postgresRepository) UnswipedUserIDs(ctx context.Context, userID int64, limit int) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, `
		SELECT u.id
		FROM users u
		WHERE u.id <> $1
		AND NOT EXISTS (
			SELECT 1 FROM swipes s WHERE s.swiper_id = $1 AND s.swiped_id = u.id
		)
		ORDER BY u.id
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list unswiped users: %w", err)
	}
	return ids, nil
}

// Migrate creates the tables this package owns
func Migrate(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS user_feature_vectors (
			user_id BIGINT PRIMARY KEY,
			feature_vector JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_user_feature_vectors_updated_at ON user_feature_vectors (updated_at);
	`)
	if err != nil {
		return fmt.Errorf("migrate matching: %w", err)
	}
	return nil
}
