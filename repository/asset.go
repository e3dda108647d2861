package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/planhaus/asset-orchestrator/entity"
	"gorm.io/gorm"
)

// AssetRepository is the central registry mapping each stored object to the
// single domain row that owns it. Replacing a file for one owner must run
// FindIDByOwner -> DeleteByID -> Create, in that order; the unique index on
// (owner_table, owner_id) backs the sequence up but does not replace it.
type AssetRepository struct {
	db *gorm.DB
}

func NewAssetRepository(db *gorm.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

func (r *AssetRepository) Create(asset *entity.Asset) (uuid.UUID, error) {
	if asset.ID == uuid.Nil {
		asset.ID = uuid.New()
	}
	if err := r.db.Create(asset).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to create asset: %w", err)
	}
	return asset.ID, nil
}

func (r *AssetRepository) DeleteByID(id uuid.UUID) error {
	if err := r.db.Where("id = ?", id).Delete(&entity.Asset{}).Error; err != nil {
		return fmt.Errorf("failed to delete asset %s: %w", id, err)
	}
	return nil
}

// FindIDByOwner returns uuid.Nil without error when no asset exists for the
// owner; callers use that as the "nothing to replace" signal.
func (r *AssetRepository) FindIDByOwner(owner entity.OwnerRef) (uuid.UUID, error) {
	var asset entity.Asset
	err := r.db.Select("id").
		Where("owner_table = ? AND owner_id = ?", owner.Table, owner.ID).
		First(&asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, nil
		}
		return uuid.Nil, fmt.Errorf("failed to look up asset by owner: %w", err)
	}
	return asset.ID, nil
}

func (r *AssetRepository) FindByID(id uuid.UUID) (*entity.Asset, error) {
	var asset entity.Asset
	if err := r.db.Where("id = ?", id).First(&asset).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *AssetRepository) FindByOwner(owner entity.OwnerRef) (*entity.Asset, error) {
	var asset entity.Asset
	err := r.db.Where("owner_table = ? AND owner_id = ?", owner.Table, owner.ID).
		First(&asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &asset, nil
}
