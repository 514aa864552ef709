package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/tgbot_go_server/internal/pkg/jwt"
	"github.com/qs3c/tgbot_go_server/internal/pkg/ws"
)

const wsTestSecret = "ws-test-secret"

func setupWebSocketServer(t *testing.T) (*httptest.Server, *ws.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := ws.NewHub()
	h := NewWebSocketHandler(hub, wsTestSecret, []string{"https://admin.example.com"})

	router := gin.New()
	router.GET("/ws", h.Handle)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, hub
}

func TestWebSocketHandler_MissingToken(t *testing.T) {
	server, _ := setupWebSocketServer(t)

	resp, err := http.Get(server.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocketHandler_AllowedOrigin(t *testing.T) {
	server, hub := setupWebSocketServer(t)

	token, err := jwt.GenerateToken(1, wsTestSecret, 1)
	require.NoError(t, err)

	wsURL := strings.Replace(server.URL, "http://", "ws://", 1) + "/ws?token=" + token
	header := http.Header{"Origin": []string{"https://admin.example.com"}}

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	assert.Equal(t, 1, hub.ConnectionCount())
}

func TestWebSocketHandler_DisallowedOrigin(t *testing.T) {
	server, hub := setupWebSocketServer(t)

	token, err := jwt.GenerateToken(1, wsTestSecret, 1)
	require.NoError(t, err)

	wsURL := strings.Replace(server.URL, "http://", "ws://", 1) + "/ws?token=" + token
	header := http.Header{"Origin": []string{"https://evil.example.com"}}

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.Error(t, err)
	if conn != nil {
		conn.Close()
	}
	require.NotNil(t, resp)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, hub.ConnectionCount())
}
