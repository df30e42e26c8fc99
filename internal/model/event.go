package model

import "time"

// EventType mirrors the notification severities understood by the UI.
type EventType string

const (
	EventSuccess EventType = "success"
	EventInfo    EventType = "info"
	EventWarning EventType = "warning"
	EventError   EventType = "error"
)

// Event is emitted after a successful trade or reward claim.
type Event struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Type      EventType      `json:"type"`
	CreatedAt time.Time      `json:"createdAt"`
	Data      map[string]any `json:"data,omitempty"`
}
