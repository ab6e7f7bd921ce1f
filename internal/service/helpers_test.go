package service_test

import (
	"context"
	"sync"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/popeskul/waha-sync/internal/cache"
	"github.com/popeskul/waha-sync/internal/config"
	"github.com/popeskul/waha-sync/internal/models"
	"github.com/popeskul/waha-sync/internal/repository"
	"github.com/popeskul/waha-sync/internal/repository/mocks"
	"github.com/popeskul/waha-sync/internal/service"
)

// memoryStore is an in-memory MessageRepository that enforces the same
// uniqueness on the gateway message id as the database does.
type memoryStore struct {
	mu      sync.Mutex
	rows    []*models.ChatMessage
	byID    map[string]*models.ChatMessage
	failIDs map[string]error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		byID:    make(map[string]*models.ChatMessage),
		failIDs: make(map[string]error),
	}
}

func (s *memoryStore) InsertMessage(_ context.Context, msg *models.ChatMessage) (*models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failIDs[msg.GatewayMessageID]; ok {
		return nil, err
	}
	if _, ok := s.byID[msg.GatewayMessageID]; ok {
		return nil, repository.ErrDuplicateMessage
	}
	stored := *msg
	s.byID[msg.GatewayMessageID] = &stored
	s.rows = append(s.rows, &stored)
	return &stored, nil
}

func (s *memoryStore) ListMessages(_ context.Context, _ models.MessageFilter, _, _ int) ([]*models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.ChatMessage(nil), s.rows...), nil
}

func (s *memoryStore) CountMessages(_ context.Context, _ models.MessageFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.rows)), nil
}

func (s *memoryStore) all() []*models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.ChatMessage(nil), s.rows...)
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string]string)}
}

func (c *memoryCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.data[key] = value
	return nil
}

func (c *memoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return "", c.err
	}
	v, ok := c.data[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return v, nil
}

func (c *memoryCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	_, ok := c.data[key]
	return ok, nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Gateway: config.GatewayConfig{
			BaseURL: "http://waha.test",
		},
		Sync: config.SyncConfig{
			Enabled:         true,
			IntervalSeconds: 5,
			MessageLimit:    20,
			SeenCacheTTL:    3600,
		},
		Notify: config.NotifyConfig{
			EventName: "chat:new-message",
		},
	}
}

// newRepoMocks wires a Repository mock whose Message() is backed by store.
func newRepoMocks(ctrl *gomock.Controller, store repository.MessageRepository) (*mocks.MockRepository, *mocks.MockSessionRepository) {
	repo := mocks.NewMockRepository(ctrl)
	sessions := mocks.NewMockSessionRepository(ctrl)
	repo.EXPECT().Message().Return(store).AnyTimes()
	repo.EXPECT().Session().Return(sessions).AnyTimes()
	return repo, sessions
}

func workingSession(name string) *models.Session {
	return &models.Session{Name: name, Status: models.SessionStatusWorking, IsActive: true}
}

func failedReport(trigger string, err error) *service.PassReport {
	report := &service.PassReport{Trigger: trigger, StartedAt: time.Now().UTC()}
	report.Record(&service.UnitError{Scope: service.ScopePass, Err: err})
	return report
}
