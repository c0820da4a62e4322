package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
)

type Post struct {
	Id             uuid.UUID
	Title          string
	Body           string
	Status         string
	Author         Author
	CreateDatetime time.Time
	UpdateDatetime time.Time
}

type PostResponse struct {
	Id             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Status         string    `json:"status"`
	Author         Author    `json:"author"`
	CreateDatetime time.Time `json:"createdAt"`
	UpdateDatetime time.Time `json:"updatedAt"`
	AllowedActions []string  `json:"allowedActions"`
}
