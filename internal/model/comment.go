package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	CommentStatusPending  = "pending"
	CommentStatusApproved = "approved"
	CommentStatusRejected = "rejected"
	CommentStatusDeleted  = "deleted"
)

// Comment rows form a tree through ParentId. A top-level comment has a nil
// ParentId and is attached to exactly one of PostId or AnswerId. HasReplies is
// computed by the server and is the only authority for whether a reply window
// exists; a locally loaded reply count may be stale.
type Comment struct {
	Id             uuid.UUID
	PostId         *uuid.UUID
	AnswerId       *uuid.UUID
	ParentId       *uuid.UUID
	Body           string
	Status         string
	HasReplies     bool
	Author         Author
	CreateDatetime time.Time
	UpdateDatetime time.Time
}

type CommentResponse struct {
	Id             uuid.UUID  `json:"id"`
	PostId         *uuid.UUID `json:"postId,omitempty"`
	AnswerId       *uuid.UUID `json:"answerId,omitempty"`
	ParentId       *uuid.UUID `json:"parentId,omitempty"`
	Body           string     `json:"body"`
	Status         string     `json:"status"`
	HasReplies     bool       `json:"hasReplies"`
	Author         Author     `json:"author"`
	CreateDatetime time.Time  `json:"createdAt"`
	UpdateDatetime time.Time  `json:"updatedAt"`
	AllowedActions []string   `json:"allowedActions"`
}
