package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document represents one uploaded exam paper for data transfer between layers.
type Document struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	PageCount  int       `json:"page_count"`
	UploadedAt time.Time `json:"uploaded_at"`
}
