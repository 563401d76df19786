package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization is the scoping unit tying writers to categories and editors
// to the stories they may review. Each organization belongs to one region.
type Organization struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	RegionID   *uuid.UUID `json:"region_id"`
	RegionName string     `json:"region_name,omitempty"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Region is a geographic display/read scoping unit.
type Region struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
