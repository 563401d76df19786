package stories

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramkatha/backend/internal/models"
)

// selectColumns splits a query's SELECT list into its columns. The story
// column lists are plain identifiers, so a comma split is exact.
func selectColumns(t *testing.T, query string) []string {
	t.Helper()
	from := strings.Index(query, "FROM")
	require.Greater(t, from, 0)
	list := strings.TrimPrefix(query[:from], "SELECT")
	var cols []string
	for _, c := range strings.Split(list, ",") {
		cols = append(cols, strings.TrimSpace(c))
	}
	return cols
}

func TestDetailQueryScanArity(t *testing.T) {
	var d models.StoryDetail
	assert.Len(t, selectColumns(t, detailBase), len(detailDest(&d)))
}

func TestPublicQueryScanArity(t *testing.T) {
	var d models.StoryDetail
	cols := selectColumns(t, publicBase)
	assert.Len(t, cols, len(publicDest(&d)))

	// The region pair rides at the end of the SELECT, matching the two
	// destinations publicDest appends after the detail columns.
	require.GreaterOrEqual(t, len(cols), 2)
	assert.Equal(t, "reg.id", cols[len(cols)-2])
	assert.Equal(t, "reg.name", cols[len(cols)-1])
}

func TestPublicReadsFilterPublished(t *testing.T) {
	assert.Contains(t, wherePublished, `s.status = 'published'`)
	assert.Contains(t, publicBase, "LEFT JOIN regions reg")
}

func TestReviewQueueOrdersNewestFirst(t *testing.T) {
	assert.Equal(t, ` ORDER BY s.created_at DESC`, orderNewestFirst)
}

func TestScopeCond(t *testing.T) {
	orgID := uuid.New()

	t.Run("unrestricted leaves query untouched", func(t *testing.T) {
		where, args := scopeCond(wherePublished, Scope{}, nil)
		assert.Equal(t, wherePublished, where)
		assert.Empty(t, args)
	})

	t.Run("restricted appends org and writer filter", func(t *testing.T) {
		where, args := scopeCond(` WHERE s.status = 'pending'`, Scope{OrganizationID: &orgID}, nil)
		assert.Contains(t, where, `u.organization_id = $1`)
		assert.Contains(t, where, `ur.kind = 'writer'`)
		assert.Equal(t, []any{orgID}, args)
	})

	t.Run("placeholders continue after existing args", func(t *testing.T) {
		reviewerID := uuid.New()
		where, args := scopeCond(wherePublished+` AND s.approved_by = $1`, Scope{OrganizationID: &orgID}, []any{reviewerID})
		assert.Contains(t, where, `u.organization_id = $2`)
		assert.Equal(t, []any{reviewerID, orgID}, args)
	})
}
