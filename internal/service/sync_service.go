package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/popeskul/waha-sync/internal/api"
	"github.com/popeskul/waha-sync/internal/cache"
	"github.com/popeskul/waha-sync/internal/config"
	"github.com/popeskul/waha-sync/internal/gateway"
	"github.com/popeskul/waha-sync/internal/metrics"
	"github.com/popeskul/waha-sync/internal/models"
	"github.com/popeskul/waha-sync/internal/notify"
	"github.com/popeskul/waha-sync/internal/repository"
)

type syncService struct {
	repo     repository.Repository
	gateway  Gateway
	ingester *ingester
	limit    int
	logger   *zap.Logger

	mu   sync.RWMutex
	last *PassReport
}

func NewSyncService(
	cfg *config.Config,
	repo repository.Repository,
	gw Gateway,
	seen cache.Cache,
	publisher notify.Publisher,
	logger *zap.Logger,
) SyncService {
	return &syncService{
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
		limit:  cfg.Sync.MessageLimit,
		logger: logger,
	}
}

func (s *syncService) RunPass(ctx context.Context, trigger string) *PassReport {
	report := newPassReport(trigger)
	defer s.complete(report)

	sessions, err := s.repo.Session().ListEligible(ctx)
	if err != nil {
		report.Record(&UnitError{Scope: ScopePass, Err: err})
		s.logger.Error("Failed to list eligible sessions", zap.String("trigger", trigger), zap.Error(err))
		return report
	}

	for _, session := range sessions {
		if err := ctx.Err(); err != nil {
			report.Record(&UnitError{Scope: ScopePass, Err: err})
			s.logger.Error("Sync pass aborted", zap.String("trigger", trigger), zap.Error(err))
			return report
		}
		s.syncSession(ctx, session, report)
	}

	return report
}

func (s *syncService) syncSession(ctx context.Context, session *models.Session, report *PassReport) {
	// ListEligible already excludes these; a stopped session must never
	// reach the gateway even if a caller hands one in.
	if !session.IsActive || session.Status == models.SessionStatusStopped {
		report.Skipped++
		return
	}

	status, err := s.gateway.GetSessionStatus(ctx, session.Name)
	if err != nil {
		s.recordUnit(report, &UnitError{Scope: ScopeSession, Session: session.Name, Err: err})
	}
	if status != models.SessionStatusWorking {
		report.Skipped++
		s.logger.Debug("Session not working, skipping",
			zap.String("session", session.Name),
			zap.String("status", string(status)))
		return
	}
	report.Sessions++

	chats, err := s.gateway.ListChats(ctx, session.Name)
	if err != nil {
		s.recordUnit(report, &UnitError{Scope: ScopeSession, Session: session.Name, Err: err})
	}

	for _, chat := range chats {
		if !gateway.Syncable(chat.ID) {
			report.Skipped++
			continue
		}
		report.Chats++
		s.syncChat(ctx, session.Name, chat.ID, report)
	}
}

func (s *syncService) syncChat(ctx context.Context, session string, chatID models.ChatID, report *PassReport) {
	messages, err := s.gateway.ListRecentMessages(ctx, session, chatID, s.limit)
	if err != nil {
		s.recordUnit(report, &UnitError{Scope: ScopeChat, Session: session, ChatID: string(chatID), Err: err})
	}
	report.Fetched += len(messages)

	for idx := range messages {
		msg := &messages[idx]
		result, err := s.ingester.ingest(ctx, sourcePoll, session, chatID, msg)
		if err != nil {
			s.recordUnit(report, &UnitError{Scope: ScopeMessage, Session: session, ChatID: string(chatID), MessageID: msg.ID, Err: err})
			continue
		}

		switch result.outcome {
		case outcomeInserted:
			report.Inserted++
		case outcomeDuplicate:
			report.Duplicates++
		}

		if result.publishErr != nil {
			s.recordUnit(report, &UnitError{Scope: ScopeNotify, Session: session, ChatID: string(chatID), MessageID: msg.ID, Err: result.publishErr})
		}
	}
}

func (s *syncService) recordUnit(report *PassReport, e *UnitError) {
	report.Record(e)
	metrics.IncUnitError(string(e.Scope))
	s.logger.Debug("Sync unit failed",
		zap.String("scope", string(e.Scope)),
		zap.String("session", e.Session),
		zap.String("chat_id", e.ChatID),
		zap.String("message_id", e.MessageID),
		zap.Error(e.Err))
}

func (s *syncService) complete(report *PassReport) {
	report.finish()
	errs := report.Errors()
	metrics.ObservePass(report.Trigger, report.PassErr() != nil, report.Duration())

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()

	s.logger.Info("Sync pass completed",
		zap.String("trigger", report.Trigger),
		zap.Duration("duration", report.Duration()),
		zap.Int("sessions", report.Sessions),
		zap.Int("chats", report.Chats),
		zap.Int("fetched", report.Fetched),
		zap.Int("inserted", report.Inserted),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", len(errs)))
}

func (s *syncService) LastReport() *PassReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

func (s *syncService) GetCircuitBreakerStatus() (state api.HealthResponseCircuitBreakerState, requests uint32, failures uint32) {
	st, requests, failures := s.gateway.BreakerStatus()
	switch st {
	case gateway.BreakerOpen:
		state = api.Open
	case gateway.BreakerHalfOpen:
		state = api.HalfOpen
	default:
		state = api.Closed
	}
	return state, requests, failures
}
