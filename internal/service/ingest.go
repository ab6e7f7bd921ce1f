package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/popeskul/waha-sync/internal/cache"
	"github.com/popeskul/waha-sync/internal/gateway"
	"github.com/popeskul/waha-sync/internal/metrics"
	"github.com/popeskul/waha-sync/internal/models"
	"github.com/popeskul/waha-sync/internal/notify"
	"github.com/popeskul/waha-sync/internal/repository"
)

type ingestOutcome int

const (
	outcomeInserted ingestOutcome = iota
	outcomeDuplicate
)

type ingestResult struct {
	outcome    ingestOutcome
	stored     *models.ChatMessage
	publishErr error
}

// ingester turns gateway messages into stored rows and notifications. The
// poller and the webhook share it so both paths build identical rows.
type ingester struct {
	repo      repository.Repository
	seen      cache.Cache
	seenTTL   time.Duration
	publisher notify.Publisher
	eventName string
	logger    *zap.Logger
	now       func() time.Time
}

func seenKey(gatewayMessageID string) string {
	return "seen:" + gatewayMessageID
}

// buildChatMessage maps a gateway message in chatID to a new row.
func buildChatMessage(session string, chatID models.ChatID, msg *models.GatewayMessage, now time.Time) *models.ChatMessage {
	phone := gateway.PhoneNumber(chatID)

	contact := msg.NotifyName()
	if contact == "" {
		contact = phone
	}

	direction := models.DirectionIncoming
	if msg.FromMe {
		direction = models.DirectionOutgoing
	}

	messageType := msg.Type
	if messageType == "" {
		messageType = models.DefaultMessageType
	}

	createdAt := now.UTC()
	if msg.Timestamp > 0 {
		createdAt = time.Unix(msg.Timestamp, 0).UTC()
	}

	return &models.ChatMessage{
		ID:               uuid.NewString(),
		SessionName:      session,
		PhoneNumber:      phone,
		ContactName:      contact,
		Direction:        direction,
		MessageType:      messageType,
		Content:          msg.Body,
		GatewayMessageID: msg.ID,
		Status:           models.MessageStatusReceived,
		IsRead:           msg.FromMe,
		CreatedAt:        createdAt,
	}
}

// ingest stores msg unless it is already known and publishes a notification
// for a fresh row. The returned error is a store failure; a publish failure
// is reported in the result because the row is kept either way.
func (i *ingester) ingest(ctx context.Context, source, session string, chatID models.ChatID, msg *models.GatewayMessage) (*ingestResult, error) {
	if msg.ID == "" {
		metrics.AddMessages(source, "error", 1)
		return nil, errMessageWithoutID
	}

	if i.alreadySeen(ctx, msg.ID) {
		metrics.AddMessages(source, "duplicate", 1)
		return &ingestResult{outcome: outcomeDuplicate}, nil
	}

	stored, err := i.repo.Message().InsertMessage(ctx, buildChatMessage(session, chatID, msg, i.now()))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateMessage) {
			i.markSeen(ctx, msg.ID)
			metrics.AddMessages(source, "duplicate", 1)
			return &ingestResult{outcome: outcomeDuplicate}, nil
		}
		metrics.AddMessages(source, "error", 1)
		return nil, err
	}

	i.markSeen(ctx, msg.ID)
	metrics.AddMessages(source, "inserted", 1)

	result := &ingestResult{outcome: outcomeInserted, stored: stored}
	if err := i.publisher.Publish(ctx, i.eventName, stored.Event()); err != nil {
		result.publishErr = fmt.Errorf("failed to publish %s: %w", i.eventName, err)
	}
	return result, nil
}

func (i *ingester) alreadySeen(ctx context.Context, gatewayMessageID string) bool {
	if i.seen == nil {
		return false
	}
	ok, err := i.seen.Exists(ctx, seenKey(gatewayMessageID))
	if err != nil {
		i.logger.Debug("Seen cache lookup failed", zap.String("message_id", gatewayMessageID), zap.Error(err))
		return false
	}
	return ok
}

func (i *ingester) markSeen(ctx context.Context, gatewayMessageID string) {
	if i.seen == nil || i.seenTTL <= 0 {
		return
	}
	if err := i.seen.Set(ctx, seenKey(gatewayMessageID), "1", i.seenTTL); err != nil {
		i.logger.Debug("Seen cache write failed", zap.String("message_id", gatewayMessageID), zap.Error(err))
	}
}
