package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/popeskul/waha-sync/internal/config"
	"github.com/popeskul/waha-sync/internal/scheduler"
)

type schedulerService struct {
	scheduler   *scheduler.Scheduler
	syncService SyncService
	enabled     bool
	logger      *zap.Logger
}

func NewSchedulerService(
	cfg *config.Config,
	syncService SyncService,
	logger *zap.Logger,
) SchedulerService {
	svc := &schedulerService{
		syncService: syncService,
		enabled:     cfg.Sync.Enabled,
		logger:      logger,
	}

	svc.scheduler = scheduler.NewScheduler(logger, cfg.Sync.Interval(), svc.executeSyncTask,
		scheduler.WithTaskTimeout(cfg.Sync.PassTimeout()))
	return svc
}

// Start begins periodic passes. It is refused when sync is disabled.
func (s *schedulerService) Start() error {
	if !s.enabled {
		return ErrSyncDisabled
	}
	return s.scheduler.Start(context.Background())
}

func (s *schedulerService) Stop() error {
	return s.scheduler.Stop()
}

func (s *schedulerService) IsRunning() bool {
	return s.scheduler.IsRunning()
}

func (s *schedulerService) Enabled() bool {
	return s.enabled
}

func (s *schedulerService) Interval() time.Duration {
	return s.scheduler.Interval()
}

// executeSyncTask surfaces only pass-level failures to the scheduler; unit
// errors stay in the report.
func (s *schedulerService) executeSyncTask(ctx context.Context) error {
	return s.syncService.RunPass(ctx, TriggerSchedule).PassErr()
}
