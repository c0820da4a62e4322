package model

import (
	"github.com/google/uuid"
)

// Author carries display fields only. Mutable account state lives in the user
// service and is never embedded into content rows.
type Author struct {
	Id          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
}
