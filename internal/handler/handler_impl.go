// Package handler provides HTTP request handlers for the application.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/popeskul/waha-sync/internal/api"
	"github.com/popeskul/waha-sync/internal/middleware"
	"github.com/popeskul/waha-sync/internal/models"
	"github.com/popeskul/waha-sync/internal/scheduler"
	"github.com/popeskul/waha-sync/internal/service"
)

const (
	errorCodeSchedulerAlreadyRunning = "SCHEDULER_ALREADY_RUNNING"
	errorCodeSchedulerNotRunning     = "SCHEDULER_NOT_RUNNING"
	errorCodeSyncDisabled            = "SYNC_DISABLED"
	errorCodeUnauthorized            = "UNAUTHORIZED"
	errorCodeInvalidRequest          = "INVALID_REQUEST"
	errorCodePayloadTooLarge         = "PAYLOAD_TOO_LARGE"
)

const (
	errorMessageSchedulerAlreadyRunning  = "Scheduler is already running"
	errorMessageSchedulerNotRunning      = "Scheduler is not running"
	errorMessageSyncDisabled             = "Sync is disabled by configuration"
	errorMessageFailedToStartScheduler   = "Failed to start scheduler"
	errorMessageFailedToStopScheduler    = "Failed to stop scheduler"
	errorMessageFailedToRetrieveMessages = "Failed to retrieve messages"
	errorMessageInvalidWebhookToken      = "Invalid webhook token"
	errorMessageInvalidWebhookBody       = "Invalid webhook body"
	errorMessageWebhookBodyTooLarge      = "Webhook body too large"
	errorMessageFailedToHandleWebhook    = "Failed to handle webhook event"
)

const (
	schedulerMessageStarted = "Scheduler started successfully"
	schedulerMessageStopped = "Scheduler stopped successfully"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100

	maxWebhookBodyBytes = 1 << 20
)

type Handler struct {
	service *service.Service
	logger  *zap.Logger
}

// NewHandler creates a new handler instance that implements api.ServerInterface.
func NewHandler(service *service.Service, logger *zap.Logger) api.ServerInterface {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// StartSync implements api.ServerInterface.
func (h *Handler) StartSync(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	err := h.service.Scheduler.Start()
	if err != nil {
		switch {
		case errors.Is(err, scheduler.ErrSchedulerAlreadyRunning):
			h.sendError(w, r, http.StatusConflict, errorCodeSchedulerAlreadyRunning, errorMessageSchedulerAlreadyRunning)
		case errors.Is(err, service.ErrSyncDisabled):
			h.sendError(w, r, http.StatusConflict, errorCodeSyncDisabled, errorMessageSyncDisabled)
		default:
			h.logger.Error("Failed to start scheduler",
				zap.String("request_id", requestID),
				zap.Error(err))
			h.sendError(w, r, http.StatusInternalServerError, middleware.ErrorCodeInternal, errorMessageFailedToStartScheduler)
		}
		return
	}

	render.JSON(w, r, api.SyncResponse{
		Status:  api.Started,
		Message: schedulerMessageStarted,
	})
}

// StopSync implements api.ServerInterface.
func (h *Handler) StopSync(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	err := h.service.Scheduler.Stop()
	if err != nil {
		if errors.Is(err, scheduler.ErrSchedulerNotRunning) {
			h.sendError(w, r, http.StatusConflict, errorCodeSchedulerNotRunning, errorMessageSchedulerNotRunning)
			return
		}

		h.logger.Error("Failed to stop scheduler",
			zap.String("request_id", requestID),
			zap.Error(err))
		h.sendError(w, r, http.StatusInternalServerError, middleware.ErrorCodeInternal, errorMessageFailedToStopScheduler)
		return
	}

	render.JSON(w, r, api.SyncResponse{
		Status:  api.Stopped,
		Message: schedulerMessageStopped,
	})
}

// RunSync implements api.ServerInterface. The pass runs on the request
// context, so a client that disconnects cancels the remaining sessions.
func (h *Handler) RunSync(w http.ResponseWriter, r *http.Request) {
	if !h.service.Scheduler.Enabled() {
		h.sendError(w, r, http.StatusConflict, errorCodeSyncDisabled, errorMessageSyncDisabled)
		return
	}

	report := h.service.Sync.RunPass(r.Context(), service.TriggerManual)
	render.JSON(w, r, toAPIReport(report))
}

// GetSyncStatus implements api.ServerInterface.
func (h *Handler) GetSyncStatus(w http.ResponseWriter, r *http.Request) {
	response := api.SyncStatusResponse{
		Enabled:         h.service.Scheduler.Enabled(),
		Running:         h.service.Scheduler.IsRunning(),
		IntervalSeconds: int(h.service.Scheduler.Interval() / time.Second),
	}

	if last := h.service.Sync.LastReport(); last != nil {
		report := toAPIReport(last)
		response.LastPass = &report
	}

	render.JSON(w, r, response)
}

// ListMessages implements api.ServerInterface.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request, params api.ListMessagesParams) {
	page := defaultPage
	limit := defaultLimit

	if params.Page != nil && *params.Page >= 1 {
		page = *params.Page
	}

	if params.Limit != nil && *params.Limit >= 1 && *params.Limit <= maxLimit {
		limit = *params.Limit
	}

	var filter models.MessageFilter
	if params.Session != nil {
		filter.SessionName = strings.TrimSpace(*params.Session)
	}
	if params.Phone != nil {
		filter.PhoneNumber = strings.TrimSpace(*params.Phone)
	}

	result, err := h.service.Message.ListMessages(r.Context(), filter, page, limit)
	if err != nil {
		requestID := middleware.GetRequestID(r.Context())
		h.logger.Error("Failed to list messages",
			zap.String("request_id", requestID),
			zap.Error(err))
		h.sendError(w, r, http.StatusInternalServerError, middleware.ErrorCodeInternal, errorMessageFailedToRetrieveMessages)
		return
	}

	render.JSON(w, r, result)
}

// ReceiveWebhook implements api.ServerInterface.
func (h *Handler) ReceiveWebhook(w http.ResponseWriter, r *http.Request, params api.ReceiveWebhookParams) {
	requestID := middleware.GetRequestID(r.Context())

	var token string
	if params.XWebhookToken != nil {
		token = *params.XWebhookToken
	}
	if err := h.service.Webhook.Authorize(token); err != nil {
		h.logger.Warn("Rejected webhook call",
			zap.String("request_id", requestID),
			zap.Error(err))
		h.sendError(w, r, http.StatusUnauthorized, errorCodeUnauthorized, errorMessageInvalidWebhookToken)
		return
	}

	var event models.WebhookEvent
	body := http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	if err := json.NewDecoder(body).Decode(&event); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.sendError(w, r, http.StatusRequestEntityTooLarge, errorCodePayloadTooLarge, errorMessageWebhookBodyTooLarge)
			return
		}
		h.sendError(w, r, http.StatusBadRequest, errorCodeInvalidRequest, errorMessageInvalidWebhookBody)
		return
	}

	result, err := h.service.Webhook.HandleEvent(r.Context(), &event)
	if err != nil {
		if errors.Is(err, service.ErrInvalidWebhookEvent) {
			h.sendError(w, r, http.StatusBadRequest, errorCodeInvalidRequest, err.Error())
			return
		}

		h.logger.Error("Failed to handle webhook event",
			zap.String("request_id", requestID),
			zap.String("event", event.Event),
			zap.String("session", event.Session),
			zap.Error(err))
		h.sendError(w, r, http.StatusInternalServerError, middleware.ErrorCodeInternal, errorMessageFailedToHandleWebhook)
		return
	}

	inserted := result.Inserted
	render.JSON(w, r, api.WebhookResponse{
		Accepted: true,
		Event:    result.Event,
		Inserted: &inserted,
	})
}

// HealthCheck implements api.ServerInterface.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := h.service.Health.GetHealth()

	response := api.HealthResponse{
		Status:    health.Status,
		Timestamp: time.Now(),
	}

	if health.SchedulerStatus != "" {
		status := health.SchedulerStatus
		response.SchedulerStatus = &status
	}

	if health.DatabaseStatus != "" {
		status := health.DatabaseStatus
		response.DatabaseStatus = &status
	}

	if health.RedisStatus != "" {
		status := health.RedisStatus
		response.RedisStatus = &status
	}

	if health.CircuitBreakerStatus != "" {
		response.CircuitBreakerStatus = &health.CircuitBreakerStatus
	}

	if health.CircuitBreakerState != "" {
		state := health.CircuitBreakerState
		response.CircuitBreakerState = &state
	}

	// Degraded still answers 200 so the process is not restarted while the
	// gateway is down.
	if health.Status == api.Unhealthy {
		render.Status(r, http.StatusServiceUnavailable)
	}

	render.JSON(w, r, response)
}

func (h *Handler) sendError(w http.ResponseWriter, r *http.Request, statusCode int, errorCode, message string) {
	render.Status(r, statusCode)
	render.JSON(w, r, api.ErrorResponse{
		Error:   errorCode,
		Message: message,
		Timestamp: func() *time.Time {
			t := time.Now()
			return &t
		}(),
	})
}

func toAPIReport(report *service.PassReport) api.PassReport {
	out := api.PassReport{
		Trigger:    report.Trigger,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		DurationMs: report.Duration().Milliseconds(),
		Sessions:   report.Sessions,
		Chats:      report.Chats,
		Fetched:    report.Fetched,
		Inserted:   report.Inserted,
		Duplicates: report.Duplicates,
		Skipped:    report.Skipped,
	}

	unitErrors := report.Errors()
	if len(unitErrors) == 0 {
		return out
	}

	errs := make([]api.PassError, 0, len(unitErrors))
	for _, ue := range unitErrors {
		pe := api.PassError{
			Scope: api.PassErrorScope(ue.Scope),
			Error: ue.Err.Error(),
		}
		if ue.Session != "" {
			pe.Session = stringPtr(ue.Session)
		}
		if ue.ChatID != "" {
			pe.ChatId = stringPtr(ue.ChatID)
		}
		if ue.MessageID != "" {
			pe.MessageId = stringPtr(ue.MessageID)
		}
		errs = append(errs, pe)
	}
	out.Errors = &errs
	return out
}

func stringPtr(s string) *string {
	return &s
}
