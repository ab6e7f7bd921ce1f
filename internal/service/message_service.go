package service

import (
	"context"
	"fmt"

	"github.com/popeskul/waha-sync/internal/api"
	"github.com/popeskul/waha-sync/internal/models"
	"github.com/popeskul/waha-sync/internal/repository"
)

type messageService struct {
	repo repository.Repository
}

func NewMessageService(repo repository.Repository) MessageService {
	return &messageService{
		repo: repo,
	}
}

// ListMessages retrieves stored messages with pagination, newest first.
func (s *messageService) ListMessages(ctx context.Context, filter models.MessageFilter, page, limit int) (*api.MessageListResponse, error) {
	offset := (page - 1) * limit

	messages, err := s.repo.Message().ListMessages(ctx, filter, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	totalCount, err := s.repo.Message().CountMessages(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get total count: %w", err)
	}

	totalPages := int(totalCount) / limit
	if int(totalCount)%limit > 0 {
		totalPages++
	}

	messageResponses := make([]api.Message, 0, len(messages))
	for _, msg := range messages {
		messageResponses = append(messageResponses, api.Message{
			Id:            msg.ID,
			SessionName:   msg.SessionName,
			PhoneNumber:   msg.PhoneNumber,
			ContactName:   msg.ContactName,
			Direction:     api.MessageDirection(msg.Direction),
			MessageType:   msg.MessageType,
			Content:       msg.Content,
			WahaMessageId: msg.GatewayMessageID,
			Status:        msg.Status,
			IsRead:        msg.IsRead,
			CreatedAt:     msg.CreatedAt,
		})
	}

	return &api.MessageListResponse{
		Messages: messageResponses,
		Pagination: api.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      int(totalCount),
			TotalPages: totalPages,
		},
	}, nil
}
