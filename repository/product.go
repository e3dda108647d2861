package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/planhaus/asset-orchestrator/entity"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) FindByID(id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	if err := r.db.Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByImageURL resolves a product from its stored image URL; nil when no
// product points at the URL.
func (r *ProductRepository) FindByImageURL(url string) (*entity.Product, error) {
	var product entity.Product
	err := r.db.Where("image_url = ?", url).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) UpdateImageURL(id uuid.UUID, url *string) error {
	return r.db.Model(&entity.Product{}).Where("id = ?", id).
		Update("image_url", url).Error
}
