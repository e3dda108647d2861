package repository

import (
	"github.com/planhaus/asset-orchestrator/infra"
	"gorm.io/gorm"
)

type Repository struct {
	AssetRepo        *AssetRepository
	ProductRepo      *ProductRepository
	ProjectRepo      *ProjectRepository
	SpaceRepo        *SpaceRepository
	DocumentRepo     *DocumentRepository
	UserRepo         *UserRepository
	StorageUsageRepo *StorageUsageRepository
}

var repository *Repository

func InitRepository(infra *infra.Infra) *Repository {
	repository = NewRepository(infra.Postgres.DB)
	return repository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		AssetRepo:        NewAssetRepository(db),
		ProductRepo:      NewProductRepository(db),
		ProjectRepo:      NewProjectRepository(db),
		SpaceRepo:        NewSpaceRepository(db),
		DocumentRepo:     NewDocumentRepository(db),
		UserRepo:         NewUserRepository(db),
		StorageUsageRepo: NewStorageUsageRepository(db),
	}
}

func GetRepository() *Repository {
	if repository == nil {
		panic("repository not initialized")
	}
	return repository
}

func (r *Repository) WithTransaction(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}
