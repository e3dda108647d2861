package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email     string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Plan      string    `json:"plan" gorm:"type:varchar(32);not null;default:free"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
}
