package server

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/webhooker/internal/testutil"
)

// TestWebSocketThroughRouter verifies /ws is reachable through the full
// middleware stack and reflected in the health endpoint.
func TestWebSocketThroughRouter(t *testing.T) {
	env := newTestEnv(t)
	wsURL := testutil.WebSocketURL(env.http.URL, "/ws")

	conn := testutil.DialWebSocket(t, wsURL)
	assert.Contains(t, testutil.ReadText(t, conn), "opened; now 1 connections")

	var health healthResponse
	decode(t, env.do(t, http.MethodGet, "/healthz", "", ""), &health)
	assert.Equal(t, 1, health.Connections)

	testutil.SendText(t, conn, "hi")
	assert.Contains(t, testutil.ReadText(t, conn), ": hi")

	require.NoError(t, testutil.CloseWebSocket(conn))
	assert.Eventually(t, func() bool { return env.server.Hub().Size() == 0 }, 2*time.Second, 10*time.Millisecond)
}

// TestWebSocketMethodNotAllowed verifies non-GET requests to /ws fail.
func TestWebSocketMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodPost, "/ws", "", "")
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

// TestWebSocketOriginPolicy verifies the configured allow-list is enforced.
func TestWebSocketOriginPolicy(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedOrigins = []string{"http://chat.example"}
	env := newTestEnvWithConfig(t, cfg)
	wsURL := testutil.WebSocketURL(env.http.URL, "/ws")

	_, status, err := testutil.ConnectWebSocket(wsURL, http.Header{"Origin": {"http://evil.example"}})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, status)

	_, status, err = testutil.ConnectWebSocket(wsURL, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, status)

	conn, _, err := testutil.ConnectWebSocket(wsURL, http.Header{"Origin": {"http://chat.example"}})
	require.NoError(t, err)
	defer conn.Close()
	assert.Contains(t, testutil.ReadText(t, conn), "opened")
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

// TestServerRunAndShutdown starts the full server, connects a WebSocket
// client and verifies cancellation closes it and Run returns cleanly.
func TestServerRunAndShutdown(t *testing.T) {
	cfg := testConfig()
	cfg.Port = freePort(t)
	cfg.ShutdownTimeout = 2 * time.Second

	srv, err := New(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	base := "http://" + net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	conn := testutil.DialWebSocket(t, testutil.WebSocketURL(base, "/ws"))
	testutil.ReadText(t, conn)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(testutil.DefaultTimeout)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

// TestServerRunListenFailure verifies a listener error is returned.
func TestServerRunListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := testConfig()
	cfg.Port = ln.Addr().(*net.TCPAddr).Port

	srv, err := New(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	defer srv.Close()

	err = srv.Run(context.Background())
	assert.ErrorContains(t, err, "http server")
}
