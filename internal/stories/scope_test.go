package stories

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramkatha/backend/internal/models"
)

func TestScopeFor(t *testing.T) {
	orgID := uuid.New()

	t.Run("editor with organization is restricted", func(t *testing.T) {
		s := ScopeFor(userWithKind(models.RoleEditor, &orgID))
		require.True(t, s.Restricted())
		assert.Equal(t, orgID, *s.OrganizationID)
	})

	t.Run("editor without organization is unrestricted", func(t *testing.T) {
		s := ScopeFor(userWithKind(models.RoleEditor, nil))
		assert.False(t, s.Restricted())
	})

	t.Run("super admin and admin are unrestricted", func(t *testing.T) {
		assert.False(t, ScopeFor(userWithKind(models.RoleSuperAdmin, nil)).Restricted())
		assert.False(t, ScopeFor(userWithKind(models.RoleAdmin, &orgID)).Restricted())
	})

	t.Run("nil viewer is unrestricted", func(t *testing.T) {
		assert.False(t, ScopeFor(nil).Restricted())
	})
}

func TestCollapseRegionFanout(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	regionX, regionY := uuid.New(), uuid.New()
	nameX, nameY := "North", "South"

	fanned := []models.StoryDetail{
		{Story: models.Story{ID: a}, RegionID: &regionX, RegionName: &nameX},
		{Story: models.Story{ID: a}, RegionID: &regionY, RegionName: &nameY},
		{Story: models.Story{ID: b}, RegionID: &regionY, RegionName: &nameY},
	}

	out := collapseRegionFanout(fanned)

	require.Len(t, out, 2, "each story appears exactly once")
	assert.Equal(t, a, out[0].ID)
	assert.Equal(t, regionX, *out[0].RegionID, "first-seen region wins")
	assert.Equal(t, b, out[1].ID)
}

func TestCollapseRegionFanoutEmpty(t *testing.T) {
	assert.Empty(t, collapseRegionFanout(nil))
}
