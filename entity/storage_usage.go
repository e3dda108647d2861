package entity

import (
	"time"

	"github.com/google/uuid"
)

// StorageUsage is the per-account running byte total. It is maintained by the
// domain layer; this service only reads it for the quota check.
type StorageUsage struct {
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey"`
	BytesUsed int64     `json:"bytes_used" gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
