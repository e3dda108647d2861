package entity

import (
	"time"

	"github.com/google/uuid"
)

type Space struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ProjectID uuid.UUID `json:"project_id" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
}

// SpaceImage is an id-addressed image slot under a space. The row is created
// on first upload for its id; the URL points at the stored file.
type SpaceImage struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	SpaceID   uuid.UUID `json:"space_id" gorm:"type:uuid;not null;index"`
	ImageURL  *string   `json:"image_url,omitempty" gorm:"type:varchar(1024)"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
}
