package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"isle-conquest/internal/protocol"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	s := newTestServer(t, filepath.Join(t.TempDir(), "isle.db"))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, Version, body["version"])
}

func TestListGamesRoute(t *testing.T) {
	s := newTestServer(t, filepath.Join(t.TempDir(), "isle.db"))
	host, _ := login(t, s, "alice")
	request(t, s, host, protocol.TypeCreateGame, protocol.CreateGamePayload{
		Name:     "open",
		Settings: protocol.GameSettings{MaxPlayers: 3, LayoutID: "example"},
	})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/games", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var list protocol.GameListPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Games, 1)
	assert.Equal(t, "open", list.Games[0].Name)
	assert.Equal(t, "alice", list.Games[0].HostName)
	assert.Equal(t, 1, list.Games[0].PlayerCount)
	assert.Equal(t, 3, list.Games[0].MaxPlayers)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/games", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHubRooms(t *testing.T) {
	s := newTestServer(t, filepath.Join(t.TempDir(), "isle.db"))
	h := s.hub

	a, b := NewClient(h, nil), NewClient(h, nil)
	h.Register(a)
	h.Register(b)
	assert.Equal(t, 2, h.ClientCount())
	drain(a)
	drain(b)

	h.Join(a, "g1")
	h.Join(b, "g1")
	assert.Equal(t, 2, h.RoomSize("g1"))

	h.Broadcast("g1", protocol.TypePong, nil)
	assert.Len(t, drain(a), 1)
	assert.Len(t, drain(b), 1)

	h.Join(b, "g2")
	assert.Equal(t, 1, h.RoomSize("g1"))
	assert.Equal(t, 1, h.RoomSize("g2"))

	h.Unregister(a)
	h.Unregister(a)
	assert.Equal(t, 0, h.RoomSize("g1"))
	assert.Equal(t, 1, h.ClientCount())

	// A closed client ignores further sends.
	h.Broadcast("g1", protocol.TypePong, nil)
	_, open := <-a.send
	assert.False(t, open)
}

func TestWebSocketSession(t *testing.T) {
	s := newTestServer(t, filepath.Join(t.TempDir(), "isle.db"))
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg protocol.Message
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, protocol.TypeWelcome, msg.Type)

	// Garbage is skipped without dropping the connection.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

	auth, err := protocol.NewMessage(protocol.TypeAuthenticate, protocol.AuthenticatePayload{Name: "carol"})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(auth))

	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, protocol.TypeAuthResult, msg.Type)
	var result protocol.AuthResultPayload
	require.NoError(t, msg.ParsePayload(&result))
	assert.True(t, result.Success)
	assert.Equal(t, "carol", result.Name)
	assert.NotEmpty(t, result.Token)
}
