package services

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const wsWriteTimeout = 5 * time.Second

// WSClient serializes writes to one connection; gorilla connections allow
// a single concurrent writer only.
type WSClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *WSClient) Write(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

type WSConnManager struct {
	mu    sync.RWMutex
	users map[int64][]*WSClient
}

func NewWSConnManager() *WSConnManager {
	return &WSConnManager{
		users: make(map[int64][]*WSClient),
	}
}

func (m *WSConnManager) Add(userID int64, conn *websocket.Conn) *WSClient {
	client := &WSClient{conn: conn}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID] = append(m.users[userID], client)
	return client
}

func (m *WSConnManager) Remove(userID int64, client *WSClient) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clients := m.users[userID]
	for i, c := range clients {
		if c == client {
			m.users[userID] = append(clients[:i:i], clients[i+1:]...)
			break
		}
	}
	if len(m.users[userID]) == 0 {
		delete(m.users, userID)
	}
}

// Send writes message to every connection of userID and returns how many
// writes succeeded.
func (m *WSConnManager) Send(userID int64, message []byte) int {
	m.mu.RLock()
	clients := append([]*WSClient(nil), m.users[userID]...)
	m.mu.RUnlock()

	delivered := 0
	for _, c := range clients {
		if err := c.Write(message); err == nil {
			delivered++
		}
	}
	return delivered
}

// Connections returns the number of open connections across all users.
func (m *WSConnManager) Connections() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, clients := range m.users {
		n += len(clients)
	}
	return n
}

func (c *WSClient) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout))
}
