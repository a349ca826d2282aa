package handlers

import (
	"net/http"
	"time"

	"empowerpwd/api/middleware"
	"empowerpwd/logger"
	"empowerpwd/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSHandlers struct {
	manager *services.WSConnManager
}

func NewWSHandlers(manager *services.WSConnManager) *WSHandlers {
	return &WSHandlers{manager: manager}
}

// MessagesWSHandler - GET /messages/ws. Pushes message events of the
// authenticated user; clients only read from it.
func (h *WSHandlers) MessagesWSHandler(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Warnf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	client := h.manager.Add(userID, conn)
	middleware.WSConnected()
	defer func() {
		h.manager.Remove(userID, client)
		middleware.WSDisconnected()
	}()

	if err := client.Write([]byte(`{"event":"connected"}`)); err != nil {
		return
	}

	done := make(chan struct{})
	defer close(done)
	go keepAlive(conn, client, done)

	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Log.Debugf("WebSocket read error for user %d: %v", userID, err)
			}
			return
		}
	}
}

func keepAlive(conn *websocket.Conn, client *services.WSClient, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := client.Ping(); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}
