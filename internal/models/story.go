package models

import (
	"time"

	"github.com/google/uuid"
)

// StoryStatus is the lifecycle state of a story. Valid transitions are
// pending->published, pending->rejected, and published->published (in-place
// edit). Rejected is terminal.
type StoryStatus string

const (
	StoryPending   StoryStatus = "pending"
	StoryPublished StoryStatus = "published"
	StoryRejected  StoryStatus = "rejected"
)

// Story is the central entity of the editorial workflow.
type Story struct {
	ID         uuid.UUID   `json:"id"`
	UserID     *uuid.UUID  `json:"user_id"`
	CategoryID uuid.UUID   `json:"category_id"`
	Title      string      `json:"title"`
	Slug       string      `json:"slug"`
	Status     StoryStatus `json:"status"`

	Subtitle                *string `json:"subtitle"`
	PhotoURL                *string `json:"photo_url"`
	Quote                   *string `json:"quote"`
	PersonName              *string `json:"person_name"`
	PersonLocation          *string `json:"person_location"`
	FacilitatorName         *string `json:"facilitator_name"`
	FacilitatorOrganization *string `json:"facilitator_organization"`
	Description             *string `json:"description"`
	Content                 string  `json:"content"`

	Location StoryLocation `json:"location"`

	ApprovedBy      *uuid.UUID `json:"approved_by"`
	ApprovedAt      *time.Time `json:"approved_at"`
	PublishedAt     *time.Time `json:"published_at"`
	RejectionReason *string    `json:"rejection_reason"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// StoryLocation holds the hierarchical location fields captured at authoring
// time from the external location-hierarchy service. IDs and names travel as
// pairs; everything below state is optional.
type StoryLocation struct {
	StateID         string   `json:"state_id"`
	StateName       *string  `json:"state_name"`
	DistrictID      *string  `json:"district_id"`
	DistrictName    *string  `json:"district_name"`
	SubDistrictID   *string  `json:"sub_district_id"`
	SubDistrictName *string  `json:"sub_district_name"`
	BlockID         *string  `json:"block_id"`
	BlockName       *string  `json:"block_name"`
	PanchayatID     *string  `json:"panchayat_id"`
	PanchayatName   *string  `json:"panchayat_name"`
	VillageID       *string  `json:"village_id"`
	VillageName     *string  `json:"village_name"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
}

// StoryDetail is a story joined with author, category and optional region
// display metadata for listing responses.
type StoryDetail struct {
	Story
	AuthorID      *uuid.UUID `json:"author_id"`
	AuthorName    *string    `json:"author_name"`
	AuthorEmail   *string    `json:"author_email"`
	CategoryName  string     `json:"category_name"`
	RegionID      *uuid.UUID `json:"region_id,omitempty"`
	RegionName    *string    `json:"region_name,omitempty"`
	ApproverName  *string    `json:"approver_name,omitempty"`
	ApproverEmail *string    `json:"approver_email,omitempty"`
}
