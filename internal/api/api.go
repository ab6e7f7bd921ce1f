// Package api holds the types and chi routing for the HTTP contract in
// api/openapi.yaml. Keep both in step when either changes.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// Defines values for HealthResponseCircuitBreakerState.
const (
	Closed   HealthResponseCircuitBreakerState = "closed"
	HalfOpen HealthResponseCircuitBreakerState = "half-open"
	Open     HealthResponseCircuitBreakerState = "open"
)

// Defines values for HealthResponseDatabaseStatus.
const (
	HealthResponseDatabaseStatusConnected    HealthResponseDatabaseStatus = "connected"
	HealthResponseDatabaseStatusDisconnected HealthResponseDatabaseStatus = "disconnected"
)

// Defines values for HealthResponseRedisStatus.
const (
	HealthResponseRedisStatusConnected    HealthResponseRedisStatus = "connected"
	HealthResponseRedisStatusDisconnected HealthResponseRedisStatus = "disconnected"
)

// Defines values for HealthResponseSchedulerStatus.
const (
	HealthResponseSchedulerStatusDisabled HealthResponseSchedulerStatus = "disabled"
	HealthResponseSchedulerStatusRunning  HealthResponseSchedulerStatus = "running"
	HealthResponseSchedulerStatusStopped  HealthResponseSchedulerStatus = "stopped"
)

// Defines values for HealthResponseStatus.
const (
	Degraded  HealthResponseStatus = "degraded"
	Healthy   HealthResponseStatus = "healthy"
	Unhealthy HealthResponseStatus = "unhealthy"
)

// Defines values for MessageDirection.
const (
	Incoming MessageDirection = "incoming"
	Outgoing MessageDirection = "outgoing"
)

// Defines values for PassErrorScope.
const (
	PassErrorScopeChat    PassErrorScope = "chat"
	PassErrorScopeMessage PassErrorScope = "message"
	PassErrorScopeNotify  PassErrorScope = "notify"
	PassErrorScopePass    PassErrorScope = "pass"
	PassErrorScopeSession PassErrorScope = "session"
)

// Defines values for SyncResponseStatus.
const (
	Started SyncResponseStatus = "started"
	Stopped SyncResponseStatus = "stopped"
)

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Error     string     `json:"error"`
	Message   string     `json:"message"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// HealthResponse defines model for HealthResponse.
type HealthResponse struct {
	CircuitBreakerState  *HealthResponseCircuitBreakerState `json:"circuit_breaker_state,omitempty"`
	CircuitBreakerStatus *string                            `json:"circuit_breaker_status,omitempty"`
	DatabaseStatus       *HealthResponseDatabaseStatus      `json:"database_status,omitempty"`
	RedisStatus          *HealthResponseRedisStatus         `json:"redis_status,omitempty"`
	SchedulerStatus      *HealthResponseSchedulerStatus     `json:"scheduler_status,omitempty"`
	Status               HealthResponseStatus               `json:"status"`
	Timestamp            time.Time                          `json:"timestamp"`
}

// HealthResponseCircuitBreakerState defines model for HealthResponse.CircuitBreakerState.
type HealthResponseCircuitBreakerState string

// HealthResponseDatabaseStatus defines model for HealthResponse.DatabaseStatus.
type HealthResponseDatabaseStatus string

// HealthResponseRedisStatus defines model for HealthResponse.RedisStatus.
type HealthResponseRedisStatus string

// HealthResponseSchedulerStatus defines model for HealthResponse.SchedulerStatus.
type HealthResponseSchedulerStatus string

// HealthResponseStatus defines model for HealthResponse.Status.
type HealthResponseStatus string

// Message defines model for Message.
type Message struct {
	ContactName   string           `json:"contact_name"`
	Content       string           `json:"content"`
	CreatedAt     time.Time        `json:"created_at"`
	Direction     MessageDirection `json:"direction"`
	Id            string           `json:"id"`
	IsRead        bool             `json:"is_read"`
	MessageType   string           `json:"message_type"`
	PhoneNumber   string           `json:"phone_number"`
	SessionName   string           `json:"session_name"`
	Status        string           `json:"status"`
	WahaMessageId string           `json:"waha_message_id"`
}

// MessageDirection defines model for Message.Direction.
type MessageDirection string

// MessageListResponse defines model for MessageListResponse.
type MessageListResponse struct {
	Messages   []Message  `json:"messages"`
	Pagination Pagination `json:"pagination"`
}

// Pagination defines model for Pagination.
type Pagination struct {
	Limit      int `json:"limit"`
	Page       int `json:"page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// PassError defines model for PassError.
type PassError struct {
	ChatId    *string        `json:"chat_id,omitempty"`
	Error     string         `json:"error"`
	MessageId *string        `json:"message_id,omitempty"`
	Scope     PassErrorScope `json:"scope"`
	Session   *string        `json:"session,omitempty"`
}

// PassErrorScope defines model for PassError.Scope.
type PassErrorScope string

// PassReport defines model for PassReport.
type PassReport struct {
	Chats      int          `json:"chats"`
	DurationMs int64        `json:"duration_ms"`
	Duplicates int          `json:"duplicates"`
	Errors     *[]PassError `json:"errors,omitempty"`
	Fetched    int          `json:"fetched"`
	FinishedAt time.Time    `json:"finished_at"`
	Inserted   int          `json:"inserted"`
	Sessions   int          `json:"sessions"`
	Skipped    int          `json:"skipped"`
	StartedAt  time.Time    `json:"started_at"`
	Trigger    string       `json:"trigger"`
}

// SyncResponse defines model for SyncResponse.
type SyncResponse struct {
	Message string             `json:"message"`
	Status  SyncResponseStatus `json:"status"`
}

// SyncResponseStatus defines model for SyncResponse.Status.
type SyncResponseStatus string

// SyncStatusResponse defines model for SyncStatusResponse.
type SyncStatusResponse struct {
	Enabled         bool        `json:"enabled"`
	IntervalSeconds int         `json:"interval_seconds"`
	LastPass        *PassReport `json:"last_pass,omitempty"`
	Running         bool        `json:"running"`
}

// WebhookEvent defines model for WebhookEvent.
type WebhookEvent struct {
	Engine  *string                 `json:"engine,omitempty"`
	Event   string                  `json:"event"`
	Payload *map[string]interface{} `json:"payload,omitempty"`
	Session *string                 `json:"session,omitempty"`
}

// WebhookResponse defines model for WebhookResponse.
type WebhookResponse struct {
	Accepted bool   `json:"accepted"`
	Event    string `json:"event"`
	Inserted *int   `json:"inserted,omitempty"`
}

// ListMessagesParams defines parameters for ListMessages.
type ListMessagesParams struct {
	Page    *int    `form:"page,omitempty" json:"page,omitempty"`
	Limit   *int    `form:"limit,omitempty" json:"limit,omitempty"`
	Session *string `form:"session,omitempty" json:"session,omitempty"`
	Phone   *string `form:"phone,omitempty" json:"phone,omitempty"`
}

// ReceiveWebhookParams defines parameters for ReceiveWebhook.
type ReceiveWebhookParams struct {
	XWebhookToken *string `json:"X-Webhook-Token,omitempty"`
}

// ReceiveWebhookJSONRequestBody defines body for ReceiveWebhook for application/json ContentType.
type ReceiveWebhookJSONRequestBody = WebhookEvent

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Service health
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// Stored chat messages, newest first
	// (GET /messages)
	ListMessages(w http.ResponseWriter, r *http.Request, params ListMessagesParams)
	// Run one reconciliation pass now
	// (POST /sync/run)
	RunSync(w http.ResponseWriter, r *http.Request)
	// Start the periodic poller
	// (POST /sync/start)
	StartSync(w http.ResponseWriter, r *http.Request)
	// Poller state and last pass report
	// (GET /sync/status)
	GetSyncStatus(w http.ResponseWriter, r *http.Request)
	// Stop the periodic poller
	// (POST /sync/stop)
	StopSync(w http.ResponseWriter, r *http.Request)
	// Gateway webhook ingest
	// (POST /webhooks/waha)
	ReceiveWebhook(w http.ResponseWriter, r *http.Request, params ReceiveWebhookParams)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

// HealthCheck operation middleware
func (siw *ServerInterfaceWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.HealthCheck(w, r)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

// ListMessages operation middleware
func (siw *ServerInterfaceWrapper) ListMessages(w http.ResponseWriter, r *http.Request) {
	var err error

	// Parameter object where we will unmarshal all parameters from the context
	var params ListMessagesParams

	// ------------- Optional query parameter "page" -------------

	err = runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &params.Page)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "page", Err: err})
		return
	}

	// ------------- Optional query parameter "limit" -------------

	err = runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}

	// ------------- Optional query parameter "session" -------------

	err = runtime.BindQueryParameter("form", true, false, "session", r.URL.Query(), &params.Session)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "session", Err: err})
		return
	}

	// ------------- Optional query parameter "phone" -------------

	err = runtime.BindQueryParameter("form", true, false, "phone", r.URL.Query(), &params.Phone)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "phone", Err: err})
		return
	}

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListMessages(w, r, params)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

// RunSync operation middleware
func (siw *ServerInterfaceWrapper) RunSync(w http.ResponseWriter, r *http.Request) {
	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.RunSync(w, r)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

// StartSync operation middleware
func (siw *ServerInterfaceWrapper) StartSync(w http.ResponseWriter, r *http.Request) {
	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.StartSync(w, r)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

// GetSyncStatus operation middleware
func (siw *ServerInterfaceWrapper) GetSyncStatus(w http.ResponseWriter, r *http.Request) {
	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetSyncStatus(w, r)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

// StopSync operation middleware
func (siw *ServerInterfaceWrapper) StopSync(w http.ResponseWriter, r *http.Request) {
	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.StopSync(w, r)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

// ReceiveWebhook operation middleware
func (siw *ServerInterfaceWrapper) ReceiveWebhook(w http.ResponseWriter, r *http.Request) {
	var err error

	// Parameter object where we will unmarshal all parameters from the context
	var params ReceiveWebhookParams

	headers := r.Header

	// ------------- Optional header parameter "X-Webhook-Token" -------------
	if valueList, found := headers[http.CanonicalHeaderKey("X-Webhook-Token")]; found {
		var XWebhookToken string
		n := len(valueList)
		if n != 1 {
			siw.ErrorHandlerFunc(w, r, &TooManyValuesForParamError{ParamName: "X-Webhook-Token", Count: n})
			return
		}

		err = runtime.BindStyledParameterWithLocation("simple", false, "X-Webhook-Token", runtime.ParamLocationHeader, valueList[0], &XWebhookToken)
		if err != nil {
			siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "X-Webhook-Token", Err: err})
			return
		}

		params.XWebhookToken = &XWebhookToken
	}

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ReceiveWebhook(w, r, params)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

type UnescapedCookieParamError struct {
	ParamName string
	Err       error
}

func (e *UnescapedCookieParamError) Error() string {
	return fmt.Sprintf("error unescaping cookie parameter '%s'", e.ParamName)
}

func (e *UnescapedCookieParamError) Unwrap() error {
	return e.Err
}

type UnmarshalingParamError struct {
	ParamName string
	Err       error
}

func (e *UnmarshalingParamError) Error() string {
	return fmt.Sprintf("Error unmarshaling parameter %s as JSON: %s", e.ParamName, e.Err.Error())
}

func (e *UnmarshalingParamError) Unwrap() error {
	return e.Err
}

type RequiredParamError struct {
	ParamName string
}

func (e *RequiredParamError) Error() string {
	return fmt.Sprintf("Query argument %s is required, but not found", e.ParamName)
}

type RequiredHeaderError struct {
	ParamName string
	Err       error
}

func (e *RequiredHeaderError) Error() string {
	return fmt.Sprintf("Header parameter %s is required, but not found", e.ParamName)
}

func (e *RequiredHeaderError) Unwrap() error {
	return e.Err
}

type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

type TooManyValuesForParamError struct {
	ParamName string
	Count     int
}

func (e *TooManyValuesForParamError) Error() string {
	return fmt.Sprintf("Expected one value for %s, got %d", e.ParamName, e.Count)
}

// Handler creates http.Handler with routing matching OpenAPI spec.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerFromMux creates http.Handler with routing matching OpenAPI spec based on the provided mux.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseRouter: r,
	})
}

func HandlerFromMuxWithBaseURL(si ServerInterface, r chi.Router, baseURL string) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseURL:    baseURL,
		BaseRouter: r,
	})
}

// HandlerWithOptions creates http.Handler with additional options
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/health", wrapper.HealthCheck)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/messages", wrapper.ListMessages)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/sync/run", wrapper.RunSync)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/sync/start", wrapper.StartSync)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/sync/status", wrapper.GetSyncStatus)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/sync/stop", wrapper.StopSync)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/webhooks/waha", wrapper.ReceiveWebhook)
	})

	return r
}
