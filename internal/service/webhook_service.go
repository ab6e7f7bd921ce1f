package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/popeskul/waha-sync/internal/cache"
	"github.com/popeskul/waha-sync/internal/config"
	"github.com/popeskul/waha-sync/internal/gateway"
	"github.com/popeskul/waha-sync/internal/models"
	"github.com/popeskul/waha-sync/internal/notify"
	"github.com/popeskul/waha-sync/internal/repository"
)

const (
	eventMessage       = "message"
	eventMessageAny    = "message.any"
	eventSessionStatus = "session.status"
)

type webhookService struct {
	repo     repository.Repository
	gateway  Gateway
	ingester *ingester
	token    string
	logger   *zap.Logger
}

func NewWebhookService(
	cfg *config.Config,
	repo repository.Repository,
	gw Gateway,
	seen cache.Cache,
	publisher notify.Publisher,
	logger *zap.Logger,
) WebhookService {
	return &webhookService{
		repo:    repo,
		gateway: gw,
		ingester: &ingester{
			repo:      repo,
			seen:      seen,
			seenTTL:   cfg.Sync.SeenTTL(),
			publisher: publisher,
			eventName: cfg.Notify.EventName,
			logger:    logger,
			now:       time.Now,
		},
		token:  cfg.Gateway.WebhookToken,
		logger: logger,
	}
}

// Authorize checks the shared webhook secret. With no secret configured every
// caller is accepted.
func (s *webhookService) Authorize(token string) error {
	if s.token == "" {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
		return ErrInvalidWebhookToken
	}
	return nil
}

func (s *webhookService) HandleEvent(ctx context.Context, event *models.WebhookEvent) (*WebhookResult, error) {
	if event == nil || event.Event == "" {
		return nil, fmt.Errorf("%w: missing event name", ErrInvalidWebhookEvent)
	}

	result := &WebhookResult{Event: event.Event}

	switch event.Event {
	case eventMessage, eventMessageAny:
		inserted, err := s.handleMessage(ctx, event)
		if err != nil {
			return nil, err
		}
		result.Inserted = inserted
	case eventSessionStatus:
		if err := s.handleSessionStatus(ctx, event); err != nil {
			return nil, err
		}
	default:
		s.logger.Debug("Ignoring webhook event", zap.String("event", event.Event), zap.String("session", event.Session))
	}

	return result, nil
}

func (s *webhookService) handleMessage(ctx context.Context, event *models.WebhookEvent) (int, error) {
	if event.Session == "" {
		return 0, fmt.Errorf("%w: missing session", ErrInvalidWebhookEvent)
	}

	var msg models.GatewayMessage
	if err := json.Unmarshal(event.Payload, &msg); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidWebhookEvent, err)
	}

	chatID := models.ChatID(msg.From)
	if msg.FromMe {
		chatID = models.ChatID(msg.To)
	}
	if !gateway.Syncable(chatID) {
		s.logger.Debug("Ignoring webhook message from unsyncable chat",
			zap.String("session", event.Session),
			zap.String("chat_id", string(chatID)))
		return 0, nil
	}

	result, err := s.ingester.ingest(ctx, sourceWebhook, event.Session, chatID, &msg)
	if err != nil {
		if errors.Is(err, errMessageWithoutID) {
			return 0, fmt.Errorf("%w: %v", ErrInvalidWebhookEvent, err)
		}
		return 0, fmt.Errorf("failed to store webhook message: %w", err)
	}

	if result.publishErr != nil {
		s.logger.Warn("Failed to notify about webhook message",
			zap.String("session", event.Session),
			zap.String("message_id", msg.ID),
			zap.Error(result.publishErr))
	}

	if result.outcome == outcomeInserted {
		return 1, nil
	}
	return 0, nil
}

func (s *webhookService) handleSessionStatus(ctx context.Context, event *models.WebhookEvent) error {
	var payload struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWebhookEvent, err)
	}

	name := payload.Name
	if name == "" {
		name = event.Session
	}
	if name == "" || strings.TrimSpace(payload.Status) == "" {
		return fmt.Errorf("%w: session status without name or status", ErrInvalidWebhookEvent)
	}

	status := models.ParseSessionStatus(payload.Status)
	if err := s.repo.Session().UpdateStatus(ctx, name, status); err != nil {
		if !errors.Is(err, repository.ErrSessionNotFound) {
			return fmt.Errorf("failed to update session status: %w", err)
		}
		s.logger.Debug("Status update for unknown session", zap.String("session", name))
	}

	s.gateway.InvalidateStatus(ctx, name)
	s.logger.Info("Session status changed",
		zap.String("session", name),
		zap.String("status", string(status)))
	return nil
}
