package repository_test

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/popeskul/waha-sync/internal/models"
)

func newTestMessage(session, phone, gatewayID string, createdAt time.Time) *models.ChatMessage {
	return &models.ChatMessage{
		ID:               uuid.NewString(),
		SessionName:      session,
		PhoneNumber:      phone,
		ContactName:      phone,
		Direction:        models.DirectionIncoming,
		MessageType:      models.DefaultMessageType,
		Content:          "hello " + gatewayID,
		GatewayMessageID: gatewayID,
		Status:           models.MessageStatusReceived,
		IsRead:           false,
		CreatedAt:        createdAt,
	}
}

func insertTestSession(db *sqlx.DB, name string, status models.SessionStatus, active bool) error {
	query := `
		INSERT INTO whatsapp_sessions (name, display_name, status, is_active)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := db.Exec(query, name, "Session "+name, status, active); err != nil {
		return fmt.Errorf("failed to insert test session: %w", err)
	}
	return nil
}
