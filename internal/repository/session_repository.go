package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/popeskul/waha-sync/internal/models"
)

type sessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) SessionRepository {
	return &sessionRepository{
		db: db,
	}
}

func (r *sessionRepository) ListEligible(ctx context.Context) ([]*models.Session, error) {
	query := `
		SELECT id, name, display_name, status, is_active, created_at, updated_at
		FROM whatsapp_sessions
		WHERE is_active AND status <> $1
		ORDER BY name`

	sessions := []*models.Session{}
	if err := r.db.SelectContext(ctx, &sessions, query, models.SessionStatusStopped); err != nil {
		return nil, fmt.Errorf("failed to list eligible sessions: %w", err)
	}

	return sessions, nil
}

func (r *sessionRepository) UpdateStatus(ctx context.Context, name string, status models.SessionStatus) error {
	query := `
		UPDATE whatsapp_sessions
		SET status = $2,
		    updated_at = NOW()
		WHERE name = $1`

	res, err := r.db.ExecContext(ctx, query, name, status)
	if err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}

	return nil
}
