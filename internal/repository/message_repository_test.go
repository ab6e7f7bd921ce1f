package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popeskul/waha-sync/internal/models"
	"github.com/popeskul/waha-sync/internal/repository"
)

func TestMessageRepository_InsertMessage(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewMessageRepository(db)
	ctx := context.Background()

	tests := []struct {
		name     string
		setup    func(t *testing.T)
		message  *models.ChatMessage
		validate func(t *testing.T, stored *models.ChatMessage, err error)
	}{
		{
			name:    "stores new message",
			setup:   func(t *testing.T) {},
			message: newTestMessage("clinic1", "5541999990000", "true_5541999990000@c.us_A1", time.Unix(1700000000, 0).UTC()),
			validate: func(t *testing.T, stored *models.ChatMessage, err error) {
				require.NoError(t, err)
				require.NotNil(t, stored)
				assert.Equal(t, "clinic1", stored.SessionName)
				assert.Equal(t, "5541999990000", stored.PhoneNumber)
				assert.Equal(t, models.DirectionIncoming, stored.Direction)
				assert.Equal(t, models.MessageStatusReceived, stored.Status)
				assert.True(t, stored.CreatedAt.Equal(time.Unix(1700000000, 0)))
			},
		},
		{
			name: "duplicate gateway id is rejected",
			setup: func(t *testing.T) {
				_, err := repo.InsertMessage(ctx, newTestMessage("clinic1", "5541999990000", "dup-1", time.Now()))
				require.NoError(t, err)
			},
			message: newTestMessage("clinic2", "5541888880000", "dup-1", time.Now()),
			validate: func(t *testing.T, stored *models.ChatMessage, err error) {
				assert.ErrorIs(t, err, repository.ErrDuplicateMessage)
				assert.Nil(t, stored)

				var count int
				require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM chat_messages WHERE waha_message_id = 'dup-1'"))
				assert.Equal(t, 1, count)
			},
		},
		{
			name:  "invalid direction fails the check constraint",
			setup: func(t *testing.T) {},
			message: func() *models.ChatMessage {
				m := newTestMessage("clinic1", "1", "bad-dir", time.Now())
				m.Direction = "sideways"
				return m
			}(),
			validate: func(t *testing.T, stored *models.ChatMessage, err error) {
				require.Error(t, err)
				assert.NotErrorIs(t, err, repository.ErrDuplicateMessage)
				assert.Contains(t, err.Error(), "failed to insert message")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			truncate(t, db)
			tt.setup(t)

			stored, err := repo.InsertMessage(ctx, tt.message)
			tt.validate(t, stored, err)
		})
	}
}

func TestMessageRepository_ConcurrentInsertSameID(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewMessageRepository(db)
	ctx := context.Background()

	const writers = 8
	results := make(chan error, writers)
	for i := 0; i < writers; i++ {
		go func() {
			_, err := repo.InsertMessage(ctx, newTestMessage("clinic1", "5541999990000", "race-1", time.Now()))
			results <- err
		}()
	}

	stored, duplicates := 0, 0
	for i := 0; i < writers; i++ {
		err := <-results
		switch {
		case err == nil:
			stored++
		case errors.Is(err, repository.ErrDuplicateMessage):
			duplicates++
		default:
			t.Errorf("unexpected insert error: %v", err)
		}
	}

	assert.Equal(t, 1, stored)
	assert.Equal(t, writers-1, duplicates)
}

func TestMessageRepository_ListMessages(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewMessageRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := repo.InsertMessage(ctx, newTestMessage("clinic1", "111", fmt.Sprintf("c1-%d", i), base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		_, err := repo.InsertMessage(ctx, newTestMessage("clinic2", "222", fmt.Sprintf("c2-%d", i), base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	tests := []struct {
		name          string
		filter        models.MessageFilter
		offset        int
		limit         int
		expectedCount int
		expectedTotal int64
		validate      func(t *testing.T, messages []*models.ChatMessage)
	}{
		{
			name:          "all sessions first page",
			offset:        0,
			limit:         4,
			expectedCount: 4,
			expectedTotal: 8,
			validate: func(t *testing.T, messages []*models.ChatMessage) {
				for i := 1; i < len(messages); i++ {
					assert.False(t, messages[i-1].CreatedAt.Before(messages[i].CreatedAt),
						"messages should be ordered by created_at DESC")
				}
			},
		},
		{
			name:          "filter by session",
			filter:        models.MessageFilter{SessionName: "clinic2"},
			offset:        0,
			limit:         10,
			expectedCount: 3,
			expectedTotal: 3,
			validate: func(t *testing.T, messages []*models.ChatMessage) {
				for _, msg := range messages {
					assert.Equal(t, "clinic2", msg.SessionName)
				}
			},
		},
		{
			name:          "filter by session and phone second page",
			filter:        models.MessageFilter{SessionName: "clinic1", PhoneNumber: "111"},
			offset:        3,
			limit:         3,
			expectedCount: 2,
			expectedTotal: 5,
			validate: func(t *testing.T, messages []*models.ChatMessage) {
				assert.Equal(t, "c1-1", messages[0].GatewayMessageID)
				assert.Equal(t, "c1-0", messages[1].GatewayMessageID)
			},
		},
		{
			name:          "no match returns empty slice",
			filter:        models.MessageFilter{PhoneNumber: "999"},
			offset:        0,
			limit:         10,
			expectedCount: 0,
			expectedTotal: 0,
			validate: func(t *testing.T, messages []*models.ChatMessage) {
				assert.NotNil(t, messages)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			messages, err := repo.ListMessages(ctx, tt.filter, tt.offset, tt.limit)
			require.NoError(t, err)
			assert.Len(t, messages, tt.expectedCount)
			tt.validate(t, messages)

			total, err := repo.CountMessages(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedTotal, total)
		})
	}
}

func TestMessageRepository_ClosedDatabase(t *testing.T) {
	db, cleanup := setupTestDB(t)
	cleanup()

	repo := repository.NewMessageRepository(db)
	ctx := context.Background()

	_, err := repo.InsertMessage(ctx, newTestMessage("clinic1", "1", "x", time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is closed")

	_, err = repo.ListMessages(ctx, models.MessageFilter{}, 0, 10)
	require.Error(t, err)

	_, err = repo.CountMessages(ctx, models.MessageFilter{})
	require.Error(t, err)
}
