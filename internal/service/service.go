package service

import (
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/popeskul/waha-sync/internal/cache"
	"github.com/popeskul/waha-sync/internal/config"
	"github.com/popeskul/waha-sync/internal/notify"
	"github.com/popeskul/waha-sync/internal/repository"
)

type Service struct {
	Sync      SyncService
	Scheduler SchedulerService
	Message   MessageService
	Webhook   WebhookService
	Health    HealthService
}

func NewService(
	cfg *config.Config,
	repo repository.Repository,
	gw Gateway,
	redisClient *redis.Client,
	seen cache.Cache,
	publisher notify.Publisher,
	logger *zap.Logger,
) *Service {
	syncService := NewSyncService(cfg, repo, gw, seen, publisher, logger)
	schedulerService := NewSchedulerService(cfg, syncService, logger)
	messageService := NewMessageService(repo)
	webhookService := NewWebhookService(cfg, repo, gw, seen, publisher, logger)
	healthService := NewHealthService(repo, redisClient, schedulerService, syncService)

	return &Service{
		Sync:      syncService,
		Scheduler: schedulerService,
		Message:   messageService,
		Webhook:   webhookService,
		Health:    healthService,
	}
}
