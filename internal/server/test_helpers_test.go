package server

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"scribble/internal/config"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.GinMode = "test"
	return cfg
}

func newTestApp(t *testing.T, cfg config.Config) *Server {
	t.Helper()
	srv := New(cfg, zerolog.Nop())
	t.Cleanup(srv.Close)
	return srv
}

func dialWS(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// connectPlayer dials /ws and returns the connection with its player id.
func connectPlayer(t *testing.T, ts *httptest.Server) (*websocket.Conn, string) {
	t.Helper()
	conn := dialWS(t, ts, "/ws")
	var hello connectedPayload
	decodeData(t, expectEvent(t, conn, outboundConnected), &hello)
	require.NotEmpty(t, hello.PlayerID)
	return conn, hello.PlayerID
}

func sendEvent(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	payload, err := json.Marshal(outboundEnvelope{Event: event, Data: data})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, payload))
}

func readEnvelope(t *testing.T, conn *websocket.Conn, timeout time.Duration) envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err, "read websocket message")
	var msg envelope
	require.NoError(t, json.Unmarshal(payload, &msg))
	return msg
}

// expectEvent reads the next frame and requires it to carry event.
func expectEvent(t *testing.T, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()
	msg := readEnvelope(t, conn, 5*time.Second)
	require.Equal(t, event, msg.Event, "unexpected event with data %s", string(msg.Data))
	return msg.Data
}

// expectNoWSMessage leaves conn unusable for further reads.
func expectNoWSMessage(t *testing.T, conn *websocket.Conn, timeout time.Duration) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	_, payload, err := conn.ReadMessage()
	if err == nil {
		t.Fatalf("expected no websocket message, got %s", string(payload))
	}
	var netErr net.Error
	if !errors.As(err, &netErr) || !netErr.Timeout() {
		t.Fatalf("expected read timeout, got %v", err)
	}
}

func decodeData(t *testing.T, data json.RawMessage, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(data, dest))
}
