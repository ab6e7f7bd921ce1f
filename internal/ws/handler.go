package ws

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/popeskul/waha-sync/internal/metrics"
	"github.com/popeskul/waha-sync/internal/middleware"
)

// Handler upgrades requests and registers the connection with the hub until
// the peer goes away. Anything the client sends is discarded.
type Handler struct {
	hub      *Hub
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler accepts browser connections only from allowedOrigins ("*" allows
// any). With no origins configured only same-host pages may connect.
func NewHandler(hub *Hub, allowedOrigins []string, logger *zap.Logger) *Handler {
	return &Handler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		return
	}

	info := ConnInfo{
		ConnID:      uuid.NewString(),
		IP:          remoteIP(r),
		RequestID:   middleware.GetRequestID(r.Context()),
		ConnectedAt: time.Now(),
	}
	h.hub.AddClient(conn, info)
	metrics.IncWSActive()
	h.logger.Info("Websocket client connected",
		zap.String("conn_id", info.ConnID),
		zap.String("ip", info.IP))

	go func() {
		var closeReason string
		defer func() {
			h.hub.RemoveClient(conn)
			metrics.DecWSActive()
			_ = conn.Close()
			h.logger.Info("Websocket client disconnected",
				zap.String("conn_id", info.ConnID),
				zap.Duration("duration", time.Since(info.ConnectedAt)),
				zap.String("reason", closeReason))
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					h.logger.Debug("Websocket read error", zap.String("conn_id", info.ConnID), zap.Error(err))
				}
				return
			}
		}
	}()
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			// Not a browser.
			return true
		}

		if len(allowed) == 0 {
			u, err := url.Parse(origin)
			return err == nil && strings.EqualFold(u.Host, r.Host)
		}

		for _, o := range allowed {
			if o == "*" || strings.EqualFold(strings.TrimSuffix(o, "/"), origin) {
				return true
			}
		}
		return false
	}
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
