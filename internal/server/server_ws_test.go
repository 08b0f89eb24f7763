package server

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"scribble/internal/game"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectGameUpdate(t *testing.T, conn *websocket.Conn) game.Snapshot {
	t.Helper()
	var snap game.Snapshot
	decodeData(t, expectEvent(t, conn, string(game.EventGameUpdate)), &snap)
	return snap
}

func TestWebsocketConnectedHello(t *testing.T) {
	srv := newTestApp(t, testConfig())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	_, first := connectPlayer(t, ts)
	_, second := connectPlayer(t, ts)
	assert.NotEqual(t, first, second)
}

func TestWebsocketGameFlow(t *testing.T) {
	srv := newTestApp(t, testConfig())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	ann, annID := connectPlayer(t, ts)
	bob, bobID := connectPlayer(t, ts)

	sendEvent(t, ann, inboundJoinGame, map[string]string{"sessionId": "room", "playerName": "Ann"})
	snap := expectGameUpdate(t, ann)
	require.Len(t, snap.Players, 1)
	assert.Equal(t, annID, snap.HostID)

	sendEvent(t, bob, inboundJoinGame, map[string]string{"sessionId": "room", "playerName": "Bob"})
	for _, conn := range []*websocket.Conn{ann, bob} {
		snap = expectGameUpdate(t, conn)
		require.Len(t, snap.Players, 2)
		assert.Equal(t, "Bob", snap.Players[1].Name)
		assert.Equal(t, game.StatusInactive, snap.Status)
	}

	// Only the host may start.
	sendEvent(t, bob, inboundStartGame, map[string]string{"sessionId": "room"})
	sendEvent(t, ann, inboundStartGame, map[string]string{"sessionId": "room"})
	for _, conn := range []*websocket.Conn{ann, bob} {
		snap = expectGameUpdate(t, conn)
		assert.Equal(t, game.StatusPreparing, snap.Status)
		assert.Equal(t, 1, snap.Round)
		require.NotNil(t, snap.Drawer)
		assert.Equal(t, annID, snap.Drawer.ID)
	}

	sendEvent(t, ann, inboundStartDrawing, map[string]string{"sessionId": "room", "word": "cat"})
	for _, conn := range []*websocket.Conn{ann, bob} {
		snap = expectGameUpdate(t, conn)
		assert.Equal(t, game.StatusDrawing, snap.Status)
		assert.Equal(t, "cat", snap.Word)
		var started game.DrawingStartedPayload
		decodeData(t, expectEvent(t, conn, string(game.EventDrawingStarted)), &started)
		assert.Equal(t, "cat", started.Word)
	}

	sendEvent(t, bob, inboundGuessWord, map[string]string{"sessionId": "room", "guess": "Cat"})
	for _, conn := range []*websocket.Conn{ann, bob} {
		var guess game.GuessPayload
		decodeData(t, expectEvent(t, conn, string(game.EventGuess)), &guess)
		assert.Equal(t, game.GuessPayload{PlayerID: bobID, Guess: "Cat"}, guess)
		decodeData(t, expectEvent(t, conn, string(game.EventIncorrectGuess)), &guess)
		assert.Equal(t, "Cat", guess.Guess)
	}

	sendEvent(t, bob, inboundGuessWord, map[string]string{"sessionId": "room", "guess": "cat"})
	for _, conn := range []*websocket.Conn{ann, bob} {
		expectEvent(t, conn, string(game.EventGuess))
		var guess game.GuessPayload
		decodeData(t, expectEvent(t, conn, string(game.EventCorrectGuess)), &guess)
		assert.Equal(t, bobID, guess.PlayerID)
	}

	stroke := json.RawMessage(`{"sessionId":"room","points":[[1,2],[3,4]],"color":"#000"}`)
	sendEvent(t, ann, inboundDrawingData, stroke)
	for _, conn := range []*websocket.Conn{ann, bob} {
		data := expectEvent(t, conn, string(game.EventDrawingData))
		assert.JSONEq(t, string(stroke), string(data))
	}

	// A non-drawer leaving only shrinks the roster.
	require.NoError(t, bob.Close())
	snap = expectGameUpdate(t, ann)
	require.Len(t, snap.Players, 1)
	assert.Equal(t, game.StatusDrawing, snap.Status)

	require.NoError(t, ann.Close())
	require.Eventually(t, func() bool {
		return srv.engine.SessionCount() == 0
	}, 5*time.Second, 20*time.Millisecond)
	rec := doGet(t, srv, "/api/sessions/room")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebsocketDrawingTimerEndsRound(t *testing.T) {
	cfg := testConfig()
	cfg.DrawingDurationMs = 50
	cfg.PreparationDelayMs = 50
	cfg.MaxRounds = 1
	srv := newTestApp(t, cfg)
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	ann, _ := connectPlayer(t, ts)
	sendEvent(t, ann, inboundJoinGame, map[string]string{"sessionId": "solo", "playerName": "Ann"})
	expectGameUpdate(t, ann)
	sendEvent(t, ann, inboundStartGame, map[string]string{"sessionId": "solo"})
	expectGameUpdate(t, ann)
	sendEvent(t, ann, inboundStartDrawing, map[string]string{"sessionId": "solo", "word": "sun"})
	expectGameUpdate(t, ann)
	expectEvent(t, ann, string(game.EventDrawingStarted))

	snap := expectGameUpdate(t, ann)
	assert.Equal(t, game.StatusPreparing, snap.Status)
	assert.Nil(t, snap.Drawer)
	assert.Empty(t, snap.Word)

	snap = expectGameUpdate(t, ann)
	assert.Equal(t, game.StatusFinished, snap.Status)
}

func TestWebsocketIgnoresInvalidFrames(t *testing.T) {
	srv := newTestApp(t, testConfig())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	ann, _ := connectPlayer(t, ts)
	require.NoError(t, ann.WriteMessage(websocket.TextMessage, []byte("not json")))
	sendEvent(t, ann, "dance", map[string]string{"sessionId": "room"})
	sendEvent(t, ann, inboundJoinGame, map[string]string{"sessionId": ""})
	sendEvent(t, ann, inboundJoinGame, map[string]string{"sessionId": "a/b"})
	sendEvent(t, ann, inboundStartGame, map[string]string{"sessionId": "missing"})

	sendEvent(t, ann, inboundJoinGame, map[string]string{"sessionId": "room"})
	snap := expectGameUpdate(t, ann)
	assert.Equal(t, "room", snap.ID)
	assert.Equal(t, 1, srv.engine.SessionCount())
}

func TestHomeWebsocketPushesSummaries(t *testing.T) {
	srv := newTestApp(t, testConfig())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	home := dialWS(t, ts, "/ws/home")
	var payload struct {
		Sessions []map[string]any `json:"sessions"`
		HTML     string           `json:"html"`
	}
	readHome := func() {
		_ = home.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, data, err := home.ReadMessage()
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &payload))
	}
	readHome()
	assert.Empty(t, payload.Sessions)
	assert.Contains(t, payload.HTML, "No sessions yet")

	ann, _ := connectPlayer(t, ts)
	sendEvent(t, ann, inboundJoinGame, map[string]string{"sessionId": "room"})
	expectGameUpdate(t, ann)

	deadline := time.Now().Add(5 * time.Second)
	for len(payload.Sessions) == 0 && time.Now().Before(deadline) {
		readHome()
	}
	require.Len(t, payload.Sessions, 1)
	assert.Equal(t, "room", payload.Sessions[0]["id"])
	assert.Contains(t, payload.HTML, "room")
}
