package websocket

import (
	"encoding/json"

	"artisanmarket/pkg/logger"
)

// EventFrame is the JSON envelope every push message travels in.
type EventFrame struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// SendEvent marshals and delivers one event frame to a user's connection.
// Users without a live connection simply miss the frame; they rebuild state
// on their next connect.
func (m *Manager) SendEvent(userID string, eventType string, payload interface{}) {
	frame, err := json.Marshal(EventFrame{Type: eventType, Payload: payload})
	if err != nil {
		logger.Error("Failed to marshal %s event for %s: %v", eventType, userID, err)
		return
	}
	m.SendToUser(userID, frame)
}
