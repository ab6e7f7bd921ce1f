package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithTaskTimeout bounds each task run. Zero means no bound.
func WithTaskTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		s.taskTimeout = d
	}
}

// Scheduler runs taskFunc sequentially: a tick that arrives while a run is in
// progress is dropped, so runs never overlap.
type Scheduler struct {
	logger      *zap.Logger
	interval    time.Duration
	taskTimeout time.Duration
	taskFunc    func(context.Context) error
	stopCh      chan struct{}
	doneCh      chan struct{}
	isRunning   bool
	isStopping  bool
	mu          sync.RWMutex
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(logger *zap.Logger, interval time.Duration, taskFunc func(context.Context) error, opts ...Option) *Scheduler {
	s := &Scheduler{
		logger:   logger,
		interval: interval,
		taskFunc: taskFunc,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the scheduler. The first run happens immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return ErrSchedulerAlreadyRunning
	}

	s.isRunning = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go s.run(ctx, s.stopCh, s.doneCh)

	s.logger.Info("Scheduler started", zap.Duration("interval", s.interval))
	return nil
}

// Stop halts the scheduler. A run in progress is allowed to finish and Stop
// returns once it has.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.isRunning || s.isStopping {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.isStopping = true
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)
	<-doneCh

	s.mu.Lock()
	s.isRunning = false
	s.isStopping = false
	s.mu.Unlock()

	s.logger.Info("Scheduler stopped")
	return nil
}

// IsRunning returns whether the scheduler is currently running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// run executes the scheduler loop
func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)
	defer func() {
		s.mu.Lock()
		if !s.isStopping {
			s.isRunning = false
		}
		s.mu.Unlock()
	}()

	s.executeTask(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler context canceled")
			return
		case <-stopCh:
			s.logger.Info("Scheduler stop signal received")
			return
		case <-ticker.C:
			// Stop may have raced with the tick.
			select {
			case <-stopCh:
				return
			default:
			}
			s.executeTask(ctx)
		}
	}
}

// executeTask runs the task function with error handling
func (s *Scheduler) executeTask(ctx context.Context) {
	taskCtx := ctx
	if s.taskTimeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, s.taskTimeout)
		defer cancel()
	}

	if err := s.taskFunc(taskCtx); err != nil {
		s.logger.Error("Task execution failed", zap.Error(err))
		return
	}
	s.logger.Debug("Task execution completed")
}
