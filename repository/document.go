package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/planhaus/asset-orchestrator/entity"
	"gorm.io/gorm"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// FindByIDAndProject returns nil when the document row does not exist under
// the project. Upload treats that as "create the record first".
func (r *DocumentRepository) FindByIDAndProject(id, projectID uuid.UUID) (*entity.Document, error) {
	var document entity.Document
	err := r.db.Where("id = ? AND project_id = ?", id, projectID).First(&document).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &document, nil
}

func (r *DocumentRepository) FindByFileURL(url string) (*entity.Document, error) {
	var document entity.Document
	err := r.db.Where("file_url = ?", url).First(&document).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &document, nil
}

func (r *DocumentRepository) UpdateFile(id uuid.UUID, url *string, bytes *int64, mimeType *string) error {
	return r.db.Model(&entity.Document{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"file_url":   url,
			"file_bytes": bytes,
			"mime_type":  mimeType,
		}).Error
}
