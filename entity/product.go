package entity

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	ImageURL  *string   `json:"image_url,omitempty" gorm:"type:varchar(1024)"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
}
