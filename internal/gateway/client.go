package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/popeskul/waha-sync/internal/cache"
	"github.com/popeskul/waha-sync/internal/config"
	"github.com/popeskul/waha-sync/internal/metrics"
	"github.com/popeskul/waha-sync/internal/models"
)

const (
	apiKeyHeader      = "X-Api-Key"
	statusCachePrefix = "session-status:"
	maxErrorBody      = 512
)

// Client talks to a WAHA instance. Every lookup fails soft: on error it
// returns the neutral value (failed status, empty list) together with the
// error, so callers can skip the unit and still record what went wrong.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	limiter     *rate.Limiter
	breaker     *CircuitBreaker
	statusCache cache.Cache
	statusTTL   time.Duration
	logger      *zap.Logger
}

// NewClient builds a gateway client. statusCache may be nil, which disables
// session status caching.
func NewClient(cfg *config.GatewayConfig, statusCache cache.Cache, logger *zap.Logger) *Client {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout(),
		},
		limiter:     rate.NewLimiter(limit, burst),
		breaker:     NewCircuitBreaker(&cfg.CircuitBreaker, logger),
		statusCache: statusCache,
		statusTTL:   cfg.StatusTTL(),
		logger:      logger,
	}
}

// GetSessionStatus returns the live status of a session, or
// SessionStatusFailed when the gateway cannot be asked.
func (c *Client) GetSessionStatus(ctx context.Context, session string) (models.SessionStatus, error) {
	if status, ok := c.cachedStatus(ctx, session); ok {
		return status, nil
	}

	var info models.GatewaySessionInfo
	path := "/api/sessions/" + url.PathEscape(session)
	if err := c.getJSON(ctx, "session_status", path, nil, &info); err != nil {
		return models.SessionStatusFailed, fmt.Errorf("failed to get status of session %q: %w", session, err)
	}

	status := models.ParseSessionStatus(info.Status)
	c.storeStatus(ctx, session, status)
	return status, nil
}

// ListChats returns the chats of a session, or an empty list on error.
func (c *Client) ListChats(ctx context.Context, session string) ([]models.GatewayChat, error) {
	var chats []models.GatewayChat
	path := "/api/" + url.PathEscape(session) + "/chats"
	if err := c.getJSON(ctx, "list_chats", path, nil, &chats); err != nil {
		return []models.GatewayChat{}, fmt.Errorf("failed to list chats of session %q: %w", session, err)
	}
	return chats, nil
}

// ListRecentMessages returns up to limit of the newest messages of a chat,
// or an empty list on error.
func (c *Client) ListRecentMessages(ctx context.Context, session string, chatID models.ChatID, limit int) ([]models.GatewayMessage, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("downloadMedia", "false")

	var messages []models.GatewayMessage
	path := "/api/" + url.PathEscape(session) + "/chats/" + url.PathEscape(string(chatID)) + "/messages"
	if err := c.getJSON(ctx, "list_messages", path, query, &messages); err != nil {
		return []models.GatewayMessage{}, fmt.Errorf("failed to list messages of chat %q: %w", chatID, err)
	}
	return messages, nil
}

// InvalidateStatus drops the cached status of a session.
func (c *Client) InvalidateStatus(ctx context.Context, session string) {
	if c.statusCache == nil {
		return
	}
	if err := c.statusCache.Delete(ctx, statusCachePrefix+session); err != nil {
		c.logger.Debug("Failed to drop cached session status",
			zap.String("session", session),
			zap.Error(err))
	}
}

// BreakerStatus reports the circuit breaker state and its counters.
func (c *Client) BreakerStatus() (state BreakerState, requests, failures uint32) {
	requests, failures = c.breaker.Counts()
	return c.breaker.State(), requests, failures
}

func (c *Client) cachedStatus(ctx context.Context, session string) (models.SessionStatus, bool) {
	if c.statusCache == nil || c.statusTTL <= 0 {
		return "", false
	}
	raw, err := c.statusCache.Get(ctx, statusCachePrefix+session)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			c.logger.Debug("Session status cache unavailable", zap.Error(err))
		}
		return "", false
	}
	return models.SessionStatus(raw), true
}

func (c *Client) storeStatus(ctx context.Context, session string, status models.SessionStatus) {
	if c.statusCache == nil || c.statusTTL <= 0 {
		return
	}
	if err := c.statusCache.Set(ctx, statusCachePrefix+session, string(status), c.statusTTL); err != nil {
		c.logger.Debug("Failed to cache session status", zap.Error(err))
	}
}

func (c *Client) getJSON(ctx context.Context, operation, path string, query url.Values, out any) error {
	start := time.Now()
	err := c.doGet(ctx, path, query, out)
	metrics.ObserveGatewayCall(operation, err, time.Since(start))
	return err
}

func (c *Client) doGet(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	return c.breaker.Execute(ctx, func() error {
		target := c.baseURL + path
		if len(query) > 0 {
			target += "?" + query.Encode()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set(apiKeyHeader, c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to send request: %w", err)
		}
		defer func() {
			if err := resp.Body.Close(); err != nil {
				c.logger.Warn("Failed to close response body", zap.Error(err))
			}
		}()

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			c.logger.Debug("Gateway answered with error status",
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
				zap.ByteString("body", body))
			return &StatusError{Code: resp.StatusCode, Path: path}
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	})
}
