package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popeskul/waha-sync/internal/models"
	"github.com/popeskul/waha-sync/internal/repository"
)

func TestSessionRepository_ListEligible(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewSessionRepository(db)
	ctx := context.Background()

	require.NoError(t, insertTestSession(db, "clinic1", models.SessionStatusWorking, true))
	require.NoError(t, insertTestSession(db, "clinic2", models.SessionStatusScanQRCode, true))
	require.NoError(t, insertTestSession(db, "clinic3", models.SessionStatusStopped, true))
	require.NoError(t, insertTestSession(db, "clinic4", models.SessionStatusWorking, false))

	sessions, err := repo.ListEligible(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "clinic1", sessions[0].Name)
	assert.Equal(t, "clinic2", sessions[1].Name)
	for _, s := range sessions {
		assert.True(t, s.IsActive)
		assert.NotEqual(t, models.SessionStatusStopped, s.Status)
	}
}

func TestSessionRepository_ListEligible_Empty(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	sessions, err := repository.NewSessionRepository(db).ListEligible(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)
}

func TestSessionRepository_UpdateStatus(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewSessionRepository(db)
	ctx := context.Background()

	require.NoError(t, insertTestSession(db, "clinic1", models.SessionStatusWorking, true))

	tests := []struct {
		name        string
		session     string
		status      models.SessionStatus
		expectedErr error
	}{
		{
			name:    "known session is updated",
			session: "clinic1",
			status:  models.SessionStatusStopped,
		},
		{
			name:        "unknown session",
			session:     "ghost",
			status:      models.SessionStatusWorking,
			expectedErr: repository.ErrSessionNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.UpdateStatus(ctx, tt.session, tt.status)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)

			var status string
			require.NoError(t, db.Get(&status, "SELECT status FROM whatsapp_sessions WHERE name = $1", tt.session))
			assert.Equal(t, string(tt.status), status)
		})
	}

	sessions, err := repo.ListEligible(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions, "stopped session must no longer be eligible")
}
