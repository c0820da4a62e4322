package thread

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forumdesk/admin-api/internal/model"
)

func TestRequiresConfirmation(t *testing.T) {
	assert.True(t, RequiresConfirmation(model.Comment{HasReplies: true}))
	assert.False(t, RequiresConfirmation(model.Comment{HasReplies: false}))
}
