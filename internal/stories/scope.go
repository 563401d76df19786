package stories

import (
	"github.com/google/uuid"

	"github.com/gramkatha/backend/internal/models"
)

// Scope restricts story reads to what the viewer may see. Every
// authenticated story listing and count must pass through ScopeFor; a new
// read path that skips it leaks stories across organizations.
type Scope struct {
	// OrganizationID, when set, restricts results to stories whose author is
	// a Writer in this organization.
	OrganizationID *uuid.UUID
}

// Restricted reports whether the scope narrows the base query.
func (s Scope) Restricted() bool { return s.OrganizationID != nil }

// ScopeFor derives the visibility scope for a viewer. Editors with an
// organization see only their own organization's Writers; super admins,
// admins, and unscoped callers see everything the base query allows.
func ScopeFor(viewer *models.User) Scope {
	if viewer != nil && viewer.Kind() == models.RoleEditor && viewer.OrganizationID != nil {
		return Scope{OrganizationID: viewer.OrganizationID}
	}
	return Scope{}
}
