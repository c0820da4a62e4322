package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	QuestionStatusOpen   = "open"
	QuestionStatusSolved = "solved"
	QuestionStatusClosed = "closed"
)

type Question struct {
	Id               uuid.UUID
	Title            string
	Body             string
	Status           string
	IsFeatured       bool
	AcceptedAnswerId *uuid.UUID
	Author           Author
	CreateDatetime   time.Time
	UpdateDatetime   time.Time
}

type QuestionResponse struct {
	Id               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Status           string     `json:"status"`
	IsFeatured       bool       `json:"isFeatured"`
	AcceptedAnswerId *uuid.UUID `json:"acceptedAnswerId"`
	Author           Author     `json:"author"`
	CreateDatetime   time.Time  `json:"createdAt"`
	UpdateDatetime   time.Time  `json:"updatedAt"`
	AllowedActions   []string   `json:"allowedActions"`
}

type QuestionFeatureRequest struct {
	Featured bool `json:"featured"`
}
