package repository_test

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popeskul/waha-sync/internal/repository"
)

func TestRepositoryImpl_Accessors(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewRepository(db)

	assert.NotNil(t, repo.Message())
	assert.NotNil(t, repo.Session())
	assert.Equal(t, repo.Message(), repo.Message())
	assert.NoError(t, repo.Ping())
}

func TestRepositoryImpl_Ping_Failure(t *testing.T) {
	tests := []struct {
		name          string
		setupRepo     func() repository.Repository
		expectedError string
	}{
		{
			name: "closed database connection",
			setupRepo: func() repository.Repository {
				db, cleanup := setupTestDB(t)
				repo := repository.NewRepository(db)
				cleanup()
				return repo
			},
			expectedError: "database is closed",
		},
		{
			name: "unreachable database",
			setupRepo: func() repository.Repository {
				db, err := sqlx.Open("postgres", "host=127.0.0.1 port=9999 user=test dbname=test sslmode=disable connect_timeout=1")
				require.NoError(t, err)
				return repository.NewRepository(db)
			},
			expectedError: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := tt.setupRepo()

			done := make(chan struct{})
			go func() {
				defer close(done)
				err := repo.Ping()
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
			}()

			select {
			case <-done:
			case <-time.After(5 * time.Second):
				t.Fatal("ping timeout exceeded")
			}
		})
	}
}
