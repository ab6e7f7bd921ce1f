package repository

import (
	"context"

	"github.com/popeskul/waha-sync/internal/models"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/repository.go -package=mocks

// Repository interface defines all repository operations.
type Repository interface {
	// Ping checks database connectivity
	Ping() error

	// Message returns chat message repository
	Message() MessageRepository

	// Session returns gateway session repository
	Session() SessionRepository
}

// MessageRepository stores chat messages keyed by their gateway message id.
type MessageRepository interface {
	// InsertMessage stores msg and returns the stored row. It returns
	// ErrDuplicateMessage when a row with the same gateway id already exists.
	InsertMessage(ctx context.Context, msg *models.ChatMessage) (*models.ChatMessage, error)
	ListMessages(ctx context.Context, filter models.MessageFilter, offset, limit int) ([]*models.ChatMessage, error)
	CountMessages(ctx context.Context, filter models.MessageFilter) (int64, error)
}

// SessionRepository reads the administratively created gateway sessions.
type SessionRepository interface {
	// ListEligible returns active sessions that are not stopped.
	ListEligible(ctx context.Context) ([]*models.Session, error)
	UpdateStatus(ctx context.Context, name string, status models.SessionStatus) error
}
