package service_test

import (
	"errors"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/popeskul/waha-sync/internal/api"
	"github.com/popeskul/waha-sync/internal/repository/mocks"
	"github.com/popeskul/waha-sync/internal/service"
	servicemocks "github.com/popeskul/waha-sync/internal/service/mocks"
)

// unreachableRedis points at a port nothing listens on, so Redis always
// reports as disconnected.
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: "localhost:9999",
	})
}

func TestHealthService_GetHealth_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockRepository(ctrl)
	mockScheduler := servicemocks.NewMockSchedulerService(ctrl)
	mockSync := servicemocks.NewMockSyncService(ctrl)

	mockScheduler.EXPECT().Enabled().Return(true)
	mockScheduler.EXPECT().IsRunning().Return(true)
	mockRepo.EXPECT().Ping().Return(nil)
	mockSync.EXPECT().GetCircuitBreakerStatus().Return(api.Closed, uint32(100), uint32(5))

	healthService := service.NewHealthService(mockRepo, unreachableRedis(), mockScheduler, mockSync)
	status := healthService.GetHealth()

	require.NotNil(t, status)
	assert.Equal(t, api.Unhealthy, status.Status) // Redis is disconnected
	assert.Equal(t, api.HealthResponseSchedulerStatusRunning, status.SchedulerStatus)
	assert.Equal(t, api.HealthResponseDatabaseStatusConnected, status.DatabaseStatus)
	assert.Equal(t, api.HealthResponseRedisStatusDisconnected, status.RedisStatus)
	assert.Equal(t, api.Closed, status.CircuitBreakerState)
	assert.Equal(t, "Requests: 100, Failures: 5 (5.0%)", status.CircuitBreakerStatus)
}

func TestHealthService_GetHealth_Failure(t *testing.T) {
	tests := []struct {
		name                    string
		setupMocks              func(*mocks.MockRepository, *servicemocks.MockSchedulerService, *servicemocks.MockSyncService)
		expectedStatus          api.HealthResponseStatus
		expectedSchedulerStatus api.HealthResponseSchedulerStatus
		expectedDatabaseStatus  api.HealthResponseDatabaseStatus
		expectedCBState         api.HealthResponseCircuitBreakerState
	}{
		{
			name: "scheduler stopped",
			setupMocks: func(repo *mocks.MockRepository, scheduler *servicemocks.MockSchedulerService, sync *servicemocks.MockSyncService) {
				scheduler.EXPECT().Enabled().Return(true)
				scheduler.EXPECT().IsRunning().Return(false)
				repo.EXPECT().Ping().Return(nil)
				sync.EXPECT().GetCircuitBreakerStatus().Return(api.Closed, uint32(50), uint32(10))
			},
			expectedStatus:          api.Unhealthy,
			expectedSchedulerStatus: api.HealthResponseSchedulerStatusStopped,
			expectedDatabaseStatus:  api.HealthResponseDatabaseStatusConnected,
			expectedCBState:         api.Closed,
		},
		{
			name: "sync disabled by configuration",
			setupMocks: func(repo *mocks.MockRepository, scheduler *servicemocks.MockSchedulerService, sync *servicemocks.MockSyncService) {
				scheduler.EXPECT().Enabled().Return(false)
				repo.EXPECT().Ping().Return(nil)
				sync.EXPECT().GetCircuitBreakerStatus().Return(api.Closed, uint32(0), uint32(0))
			},
			expectedStatus:          api.Unhealthy,
			expectedSchedulerStatus: api.HealthResponseSchedulerStatusDisabled,
			expectedDatabaseStatus:  api.HealthResponseDatabaseStatusConnected,
			expectedCBState:         api.Closed,
		},
		{
			name: "database disconnected",
			setupMocks: func(repo *mocks.MockRepository, scheduler *servicemocks.MockSchedulerService, sync *servicemocks.MockSyncService) {
				scheduler.EXPECT().Enabled().Return(true)
				scheduler.EXPECT().IsRunning().Return(true)
				repo.EXPECT().Ping().Return(errors.New("connection failed"))
				sync.EXPECT().GetCircuitBreakerStatus().Return(api.Closed, uint32(0), uint32(0))
			},
			expectedStatus:          api.Unhealthy,
			expectedSchedulerStatus: api.HealthResponseSchedulerStatusRunning,
			expectedDatabaseStatus:  api.HealthResponseDatabaseStatusDisconnected,
			expectedCBState:         api.Closed,
		},
		{
			name: "everything failing",
			setupMocks: func(repo *mocks.MockRepository, scheduler *servicemocks.MockSchedulerService, sync *servicemocks.MockSyncService) {
				scheduler.EXPECT().Enabled().Return(true)
				scheduler.EXPECT().IsRunning().Return(false)
				repo.EXPECT().Ping().Return(errors.New("db error"))
				sync.EXPECT().GetCircuitBreakerStatus().Return(api.Open, uint32(1000), uint32(999))
			},
			expectedStatus:          api.Unhealthy, // a dead store outranks an open breaker
			expectedSchedulerStatus: api.HealthResponseSchedulerStatusStopped,
			expectedDatabaseStatus:  api.HealthResponseDatabaseStatusDisconnected,
			expectedCBState:         api.Open,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRepo := mocks.NewMockRepository(ctrl)
			mockScheduler := servicemocks.NewMockSchedulerService(ctrl)
			mockSync := servicemocks.NewMockSyncService(ctrl)

			tt.setupMocks(mockRepo, mockScheduler, mockSync)

			healthService := service.NewHealthService(mockRepo, unreachableRedis(), mockScheduler, mockSync)
			status := healthService.GetHealth()

			require.NotNil(t, status)
			assert.Equal(t, tt.expectedStatus, status.Status)
			assert.Equal(t, tt.expectedSchedulerStatus, status.SchedulerStatus)
			assert.Equal(t, tt.expectedDatabaseStatus, status.DatabaseStatus)
			assert.Equal(t, api.HealthResponseRedisStatusDisconnected, status.RedisStatus)
			assert.Equal(t, tt.expectedCBState, status.CircuitBreakerState)
		})
	}
}

func TestHealthService_CircuitBreakerStatusFormatting(t *testing.T) {
	tests := []struct {
		name             string
		requests         uint32
		failures         uint32
		expectedCBStatus string
	}{
		{
			name:             "no requests",
			expectedCBStatus: "No requests yet",
		},
		{
			name:             "all successful",
			requests:         100,
			expectedCBStatus: "Requests: 100, Failures: 0 (0.0%)",
		},
		{
			name:             "some failures",
			requests:         100,
			failures:         25,
			expectedCBStatus: "Requests: 100, Failures: 25 (25.0%)",
		},
		{
			name:             "all failures",
			requests:         50,
			failures:         50,
			expectedCBStatus: "Requests: 50, Failures: 50 (100.0%)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRepo := mocks.NewMockRepository(ctrl)
			mockScheduler := servicemocks.NewMockSchedulerService(ctrl)
			mockSync := servicemocks.NewMockSyncService(ctrl)

			mockScheduler.EXPECT().Enabled().Return(true)
			mockScheduler.EXPECT().IsRunning().Return(true)
			mockRepo.EXPECT().Ping().Return(nil)
			mockSync.EXPECT().GetCircuitBreakerStatus().Return(api.Closed, tt.requests, tt.failures)

			healthService := service.NewHealthService(mockRepo, unreachableRedis(), mockScheduler, mockSync)
			status := healthService.GetHealth()

			assert.Equal(t, tt.expectedCBStatus, status.CircuitBreakerStatus)
		})
	}
}
