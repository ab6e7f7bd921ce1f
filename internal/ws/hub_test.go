package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHubAddAndRemoveClient(t *testing.T) {
	hub := NewHub(zap.NewNop())

	hub.AddClient(nil, ConnInfo{ConnID: "c1"})
	assert.Equal(t, 1, hub.Count())

	assert.True(t, hub.RemoveClient(nil))
	assert.Equal(t, 0, hub.Count())
	assert.False(t, hub.RemoveClient(nil))
}

func TestHubPublishWithoutClients(t *testing.T) {
	hub := NewHub(zap.NewNop())
	assert.NoError(t, hub.Publish(context.Background(), "chat:new-message", map[string]string{"id": "m1"}))
}

func TestHubPublishEncodeError(t *testing.T) {
	hub := NewHub(zap.NewNop())
	err := hub.Publish(context.Background(), "chat:new-message", make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode")
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Count() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHandlerBroadcastsToAllClients(t *testing.T) {
	hub := NewHub(zap.NewNop())
	server := httptest.NewServer(NewHandler(hub, nil, zap.NewNop()))
	defer server.Close()

	first := dial(t, server)
	defer first.Close()
	second := dial(t, server)
	defer second.Close()
	waitForClients(t, hub, 2)

	require.NoError(t, hub.Publish(context.Background(), "chat:new-message", map[string]string{"id": "m1"}))

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var env struct {
			Event string            `json:"event"`
			Data  map[string]string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(data, &env))
		assert.Equal(t, "chat:new-message", env.Event)
		assert.Equal(t, "m1", env.Data["id"])
	}
}

func TestHandlerRemovesClientOnDisconnect(t *testing.T) {
	hub := NewHub(zap.NewNop())
	server := httptest.NewServer(NewHandler(hub, nil, zap.NewNop()))
	defer server.Close()

	conn := dial(t, server)
	waitForClients(t, hub, 1)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))
	_ = conn.Close()

	waitForClients(t, hub, 0)
}

func TestHubClose(t *testing.T) {
	hub := NewHub(zap.NewNop())
	server := httptest.NewServer(NewHandler(hub, nil, zap.NewNop()))
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()
	waitForClients(t, hub, 1)

	require.NoError(t, hub.Close())
	assert.Equal(t, 0, hub.Count())
}

func TestOriginChecker(t *testing.T) {
	tests := []struct {
		name     string
		allowed  []string
		origin   string
		host     string
		expected bool
	}{
		{name: "no origin header", allowed: []string{"https://admin.clinic.example"}, expected: true},
		{name: "wildcard", allowed: []string{"*"}, origin: "https://any.example", expected: true},
		{name: "listed origin", allowed: []string{"https://admin.clinic.example/"}, origin: "https://admin.clinic.example", expected: true},
		{name: "unlisted origin", allowed: []string{"https://admin.clinic.example"}, origin: "https://evil.example", expected: false},
		{name: "same host without list", origin: "http://localhost:8080", host: "localhost:8080", expected: true},
		{name: "foreign host without list", origin: "http://evil.example", host: "localhost:8080", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.host != "" {
				req.Host = tt.host
			}
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}

			assert.Equal(t, tt.expected, originChecker(tt.allowed)(req))
		})
	}
}

func TestHandlerRejectsUnlistedOrigin(t *testing.T) {
	hub := NewHub(zap.NewNop())
	server := httptest.NewServer(NewHandler(hub, []string{"https://admin.clinic.example"}, zap.NewNop()))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"https://evil.example"}})
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, hub.Count())
}
