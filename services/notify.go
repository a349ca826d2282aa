package services

import (
	"context"
	"encoding/json"

	"empowerpwd/models"
)

// LocalPublisher pushes events straight to this process's WebSocket
// connections. Used when no broker is configured.
type LocalPublisher struct {
	ws *WSConnManager
}

func NewLocalPublisher(ws *WSConnManager) *LocalPublisher {
	return &LocalPublisher{ws: ws}
}

func (p *LocalPublisher) Publish(_ context.Context, event models.MessageEvent) error {
	return pushEvent(p.ws, event)
}

func pushEvent(ws *WSConnManager, event models.MessageEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	ws.Send(event.UserID, data)
	return nil
}
