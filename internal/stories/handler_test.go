package stories

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gramkatha/backend/internal/models"
)

func TestListPayload(t *testing.T) {
	list := []models.StoryDetail{{}, {}}
	body := listPayload(list)
	assert.Equal(t, 2, body["count"])
	assert.Equal(t, list, body["stories"])

	empty := listPayload(nil)
	assert.Equal(t, 0, empty["count"])
}
