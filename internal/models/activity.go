package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity is an audit log entry. Users only ever see their own activities.
type Activity struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"timestamp"`
}
