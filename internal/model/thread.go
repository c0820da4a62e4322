package model

import (
	"github.com/google/uuid"
)

// ThreadNodeView is the renderable shape of one comment in a thread. Replies
// are present only when the node is expanded and loaded; State tells the
// caller which affordance to draw (expand toggle, spinner, retry, or an
// explicit empty notice when the server promised replies that did not come
// back).
type ThreadNodeView struct {
	Comment         CommentResponse  `json:"comment"`
	State           string           `json:"state"`
	Expanded        bool             `json:"expanded"`
	Depth           int              `json:"depth"`
	LoadedReplies   int              `json:"loadedReplies"`
	TotalReplies    int              `json:"totalReplies"`
	ShowEmptyNotice bool             `json:"showEmptyNotice"`
	Error           string           `json:"error,omitempty"`
	Replies         []ThreadNodeView `json:"replies,omitempty"`
}

type ThreadView struct {
	RootKind    string           `json:"rootKind"`
	RootId      uuid.UUID        `json:"rootId"`
	Comments    []ThreadNodeView `json:"comments"`
	LoadedCount int              `json:"loadedCount"`
	TotalCount  int              `json:"totalCount"`
}
