package analytics

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	GetMilestones(ctx context.Context, userID int64) (*Milestones, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetMilestones(ctx context.Context, userID int64) (*Milestones, error) {
	var m Milestones
	err := r.db.GetContext(ctx, &m, `
		SELECT
			(
				SELECT COUNT(*)
				FROM conversations c
				JOIN conversation_participants cp ON cp.conversation_id = c.id
				WHERE cp.user_id = $1 AND c.is_active = true
			) AS active_conversations,
			(
				SELECT MIN(created_at) FROM matches WHERE user1_id = $1 OR user2_id = $1
			) AS first_match_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("get milestones: %w", err)
	}
	return &m, nil
}
