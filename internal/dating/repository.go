package dating

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/imadgeboyega/kiekky-matching/internal/matching"
)

const (
	effectiveLatitude  = `(CASE WHEN p.is_passport_enabled THEN p.passport_latitude ELSE p.latitude END)`
	effectiveLongitude = `(CASE WHEN p.is_passport_enabled THEN p.passport_longitude ELSE p.longitude END)`
)

type Repository interface {
	// GetRequester returns ErrUserNotFound for an unknown user and a nil profile
	// for a user who has not created one
	GetRequester(ctx context.Context, userID int64) (*matching.Profile, error)
	FindCandidates(ctx context.Context, q CandidateQuery) ([]*matching.Profile, error)
	SwipedUserIDs(ctx context.Context, userID int64) (map[int64]bool, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetRequester(ctx context.Context, userID int64) (*matching.Profile, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID); err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	var profile matching.Profile
	err := r.db.GetContext(ctx, &profile, `SELECT `+matching.ProfileColumns+` FROM profiles p WHERE p.user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get requester profile: %w", err)
	}
	return &profile, nil
}

// FindCandidates applies the SQL side of the hard filters
func (r *postgresRepository) FindCandidates(ctx context.Context, q CandidateQuery) ([]*matching.Profile, error) {
	query := `
		SELECT ` + matching.ProfileColumns + `
		FROM profiles p
		WHERE p.user_id <> $1
		AND p.is_active = true
		AND p.is_hidden = false
		AND p.date_of_birth IS NOT NULL
		AND date_part('year', age(p.date_of_birth)) BETWEEN $2 AND $3
		AND NOT EXISTS (
			SELECT 1 FROM blocked_users b
			WHERE (b.user_id = $1 AND b.blocked_id = p.user_id)
			OR (b.user_id = p.user_id AND b.blocked_id = $1)
		)`
	args := []interface{}{q.UserID, q.MinAge, q.MaxAge}

	if q.Gender != "" {
		args = append(args, q.Gender)
		query += ` AND lower(p.gender) = lower($` + strconv.Itoa(len(args)) + `)`
	}
	if q.LookingFor != "" {
		args = append(args, q.LookingFor)
		query += ` AND lower(p.looking_for) = lower($` + strconv.Itoa(len(args)) + `)`
	}
	if q.Language != "" {
		args = append(args, q.Language)
		query += ` AND p.preferred_language = $` + strconv.Itoa(len(args))
	}
	if q.ExcludeSwiped {
		query += ` AND NOT EXISTS (SELECT 1 FROM swipes s WHERE s.swiper_id = $1 AND s.swiped_id = p.user_id)`
	}
	if q.Box != nil {
		args = append(args, q.Box.MinLat, q.Box.MaxLat)
		query += ` AND ` + effectiveLatitude + ` BETWEEN $` + strconv.Itoa(len(args)-1) + ` AND $` + strconv.Itoa(len(args))
		if q.Box.MinLon > -180 || q.Box.MaxLon < 180 {
			args = append(args, q.Box.MinLon, q.Box.MaxLon)
			query += ` AND ` + effectiveLongitude + ` BETWEEN $` + strconv.Itoa(len(args)-1) + ` AND $` + strconv.Itoa(len(args))
		}
	} else if q.Country != "" {
		args = append(args, q.Country)
		query += ` AND lower(p.country) = lower($` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, q.Limit)
	query += ` ORDER BY p.user_id LIMIT $` + strconv.Itoa(len(args))

	var profiles []*matching.Profile
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}
	return profiles, nil
}

func (r *postgresRepository) SwipedUserIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, `SELECT swiped_id FROM swipes WHERE swiper_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("list swipes: %w", err)
	}
	swiped := make(map[int64]bool, len(ids))
	for _, id := range ids {
		swiped[id] = true
	}
	return swiped, nil
}
