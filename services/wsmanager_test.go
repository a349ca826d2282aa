package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// connectUser opens a real WebSocket registered in ws under userID and
// returns the client side.
func connectUser(t *testing.T, ws *WSConnManager, userID int64) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	before := ws.Connections()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		client := ws.Add(userID, conn)
		defer ws.Remove(userID, client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.Eventually(t, func() bool { return ws.Connections() == before+1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	return conn
}

func TestWSConnManagerSend(t *testing.T) {
	ws := NewWSConnManager()
	first := connectUser(t, ws, 1)
	second := connectUser(t, ws, 1)
	connectUser(t, ws, 2)

	assert.Equal(t, 2, ws.Send(1, []byte(`{"event":"ping"}`)))
	for _, conn := range []*websocket.Conn{first, second} {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.JSONEq(t, `{"event":"ping"}`, string(data))
	}
	assert.Zero(t, ws.Send(42, []byte("nobody")))
}

func TestWSConnManagerRemove(t *testing.T) {
	ws := NewWSConnManager()
	conn := connectUser(t, ws, 5)
	require.Equal(t, 1, ws.Connections())

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return ws.Connections() == 0 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, ws.Send(5, []byte("gone")))
}
