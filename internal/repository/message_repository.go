package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/popeskul/waha-sync/internal/models"
)

const messageColumns = `id, session_name, phone_number, contact_name, direction, message_type,
		content, waha_message_id, status, is_read, created_at`

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{
		db: db,
	}
}

// InsertMessage relies on the unique waha_message_id constraint: a conflicting
// insert returns no row, which is reported as ErrDuplicateMessage.
func (r *messageRepository) InsertMessage(ctx context.Context, msg *models.ChatMessage) (*models.ChatMessage, error) {
	query := `
		INSERT INTO chat_messages (` + messageColumns + `)
		VALUES (:id, :session_name, :phone_number, :contact_name, :direction, :message_type,
		        :content, :waha_message_id, :status, :is_read, :created_at)
		ON CONFLICT (waha_message_id) DO NOTHING
		RETURNING ` + messageColumns

	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	var stored models.ChatMessage
	if err := stmt.GetContext(ctx, &stored, msg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDuplicateMessage
		}
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	return &stored, nil
}

// ListMessages returns stored messages, newest first.
func (r *messageRepository) ListMessages(ctx context.Context, filter models.MessageFilter, offset, limit int) ([]*models.ChatMessage, error) {
	where, args := filterClause(filter)
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM chat_messages
		%s
		ORDER BY created_at DESC, id
		LIMIT $%d OFFSET $%d`, messageColumns, where, len(args)-1, len(args))

	messages := []*models.ChatMessage{}
	if err := r.db.SelectContext(ctx, &messages, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	return messages, nil
}

func (r *messageRepository) CountMessages(ctx context.Context, filter models.MessageFilter) (int64, error) {
	where, args := filterClause(filter)

	var count int64
	query := `SELECT COUNT(*) FROM chat_messages ` + where
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}

	return count, nil
}

func filterClause(filter models.MessageFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.SessionName != "" {
		args = append(args, filter.SessionName)
		conds = append(conds, fmt.Sprintf("session_name = $%d", len(args)))
	}
	if filter.PhoneNumber != "" {
		args = append(args, filter.PhoneNumber)
		conds = append(conds, fmt.Sprintf("phone_number = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}
