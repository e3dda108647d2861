package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/planhaus/asset-orchestrator/entity"
	"gorm.io/gorm"
)

type SpaceRepository struct {
	db *gorm.DB
}

func NewSpaceRepository(db *gorm.DB) *SpaceRepository {
	return &SpaceRepository{db: db}
}

func (r *SpaceRepository) FindByID(id uuid.UUID) (*entity.Space, error) {
	var space entity.Space
	if err := r.db.Where("id = ?", id).First(&space).Error; err != nil {
		return nil, err
	}
	return &space, nil
}

func (r *SpaceRepository) FindImageByID(id uuid.UUID) (*entity.SpaceImage, error) {
	var image entity.SpaceImage
	err := r.db.Where("id = ?", id).First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &image, nil
}

// FindImageByURL resolves a space image slot from its stored URL; nil when no
// slot points at the URL.
func (r *SpaceRepository) FindImageByURL(url string) (*entity.SpaceImage, error) {
	var image entity.SpaceImage
	err := r.db.Where("image_url = ?", url).First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &image, nil
}

func (r *SpaceRepository) CreateImage(image *entity.SpaceImage) error {
	return r.db.Create(image).Error
}

func (r *SpaceRepository) UpdateImageURL(id uuid.UUID, url *string) error {
	return r.db.Model(&entity.SpaceImage{}).Where("id = ?", id).
		Update("image_url", url).Error
}
