package models

import (
	"time"

	"github.com/google/uuid"
)

// StoryCategory is a content bucket. Organizations assigned to a category may
// write into it; regions assigned to it scope where stories are displayed.
type StoryCategory struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	IsActive    bool      `json:"is_active"`
	Regions     []Region  `json:"regions,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
