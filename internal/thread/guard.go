package thread

import (
	"github.com/forumdesk/admin-api/internal/model"
)

// RequiresConfirmation reports whether deleting the comment must go through
// an explicit confirmation step first. The server-reported HasReplies flag is
// the only input: deleting a comment with replies cascades into all of its
// descendants, so the moderator has to acknowledge that; a comment without
// replies deletes immediately with no prompt.
func RequiresConfirmation(c model.Comment) bool {
	return c.HasReplies
}
