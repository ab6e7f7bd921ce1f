package service

import (
	"context"
	"time"

	"github.com/popeskul/waha-sync/internal/api"
	"github.com/popeskul/waha-sync/internal/gateway"
	"github.com/popeskul/waha-sync/internal/models"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/service.go -package=mocks

// Gateway is the subset of the WhatsApp gateway client used by the services.
// Listing calls fail soft: on error they still return a usable (empty or
// failed) value alongside the error.
type Gateway interface {
	GetSessionStatus(ctx context.Context, session string) (models.SessionStatus, error)
	ListChats(ctx context.Context, session string) ([]models.GatewayChat, error)
	ListRecentMessages(ctx context.Context, session string, chatID models.ChatID, limit int) ([]models.GatewayMessage, error)
	InvalidateStatus(ctx context.Context, session string)
	BreakerStatus() (state gateway.BreakerState, requests, failures uint32)
}

type SyncService interface {
	// RunPass reconciles every eligible session once. It never fails as a
	// whole; problems are recorded in the returned report.
	RunPass(ctx context.Context, trigger string) *PassReport
	LastReport() *PassReport
	GetCircuitBreakerStatus() (state api.HealthResponseCircuitBreakerState, requests uint32, failures uint32)
}

type SchedulerService interface {
	Start() error
	Stop() error
	IsRunning() bool
	Enabled() bool
	Interval() time.Duration
}

type MessageService interface {
	ListMessages(ctx context.Context, filter models.MessageFilter, page, limit int) (*api.MessageListResponse, error)
}

type WebhookService interface {
	Authorize(token string) error
	HandleEvent(ctx context.Context, event *models.WebhookEvent) (*WebhookResult, error)
}

type HealthService interface {
	GetHealth() *HealthStatus
}
