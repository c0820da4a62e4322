package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	AnswerStatusPending  = "pending"
	AnswerStatusApproved = "approved"
	AnswerStatusRejected = "rejected"
)

type Answer struct {
	Id             uuid.UUID
	QuestionId     uuid.UUID
	Body           string
	Status         string
	IsAccepted     bool
	Author         Author
	CreateDatetime time.Time
	UpdateDatetime time.Time

	// AcceptedAnswerId of the owning question, joined in by the list query so
	// the accept action can be gated without a second fetch.
	QuestionAcceptedAnswerId *uuid.UUID
}

type AnswerResponse struct {
	Id             uuid.UUID `json:"id"`
	QuestionId     uuid.UUID `json:"questionId"`
	Status         string    `json:"status"`
	IsAccepted     bool      `json:"isAccepted"`
	Author         Author    `json:"author"`
	CreateDatetime time.Time `json:"createdAt"`
	UpdateDatetime time.Time `json:"updatedAt"`
	AllowedActions []string  `json:"allowedActions"`
}
