package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReportStatusPending   = "pending"
	ReportStatusResolved  = "resolved"
	ReportStatusDismissed = "dismissed"
)

type Report struct {
	Id             uuid.UUID
	SubjectKind    string
	SubjectId      uuid.UUID
	Reason         string
	Status         string
	Author         Author
	CreateDatetime time.Time
	UpdateDatetime time.Time
}

type ReportResponse struct {
	Id             uuid.UUID `json:"id"`
	SubjectKind    string    `json:"subjectKind"`
	SubjectId      uuid.UUID `json:"subjectId"`
	Reason         string    `json:"reason"`
	Status         string    `json:"status"`
	Author         Author    `json:"author"`
	CreateDatetime time.Time `json:"createdAt"`
	UpdateDatetime time.Time `json:"updatedAt"`
	AllowedActions []string  `json:"allowedActions"`
}
