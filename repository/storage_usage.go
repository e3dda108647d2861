package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/planhaus/asset-orchestrator/entity"
	"gorm.io/gorm"
)

// StorageUsageRepository only reads: the running total is maintained by the
// domain layer, the quota guard just consults it.
type StorageUsageRepository struct {
	db *gorm.DB
}

func NewStorageUsageRepository(db *gorm.DB) *StorageUsageRepository {
	return &StorageUsageRepository{db: db}
}

// BytesUsed returns 0 for accounts with no usage row yet.
func (r *StorageUsageRepository) BytesUsed(userID uuid.UUID) (int64, error) {
	var usage entity.StorageUsage
	err := r.db.Where("user_id = ?", userID).First(&usage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return usage.BytesUsed, nil
}
