package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document rows are created by the domain layer before any file is attached.
// Upload rejects unknown document ids, which is what keeps bytes from ever
// being persisted for a nonexistent owner.
type Document struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ProjectID uuid.UUID `json:"project_id" gorm:"type:uuid;not null;index"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null"`
	FileURL   *string   `json:"file_url,omitempty" gorm:"type:varchar(1024)"`
	FileBytes *int64    `json:"file_bytes,omitempty"`
	MimeType  *string   `json:"mime_type,omitempty" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
}
