package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AssetSource says where the bytes live.
type AssetSource string

const (
	SourceNativeStore  AssetSource = "native_store"
	SourceExternalLink AssetSource = "external_link"
)

// AssetKind is the upload pipeline the asset came through.
type AssetKind string

const (
	KindProductImage AssetKind = "product_image"
	KindSpaceImage   AssetKind = "space_image"
	KindDocument     AssetKind = "document"
)

// OwnerTable names the domain table an asset hangs off.
type OwnerTable string

const (
	OwnerTableProducts    OwnerTable = "products"
	OwnerTableSpaceImages OwnerTable = "space_images"
	OwnerTableDocuments   OwnerTable = "documents"
)

// OwnerRef points at exactly one domain row. Use the constructors so the
// table/kind pairing stays consistent.
type OwnerRef struct {
	Table OwnerTable
	ID    uuid.UUID
}

func ProductOwner(id uuid.UUID) OwnerRef {
	return OwnerRef{Table: OwnerTableProducts, ID: id}
}

func SpaceImageOwner(id uuid.UUID) OwnerRef {
	return OwnerRef{Table: OwnerTableSpaceImages, ID: id}
}

func DocumentOwner(id uuid.UUID) OwnerRef {
	return OwnerRef{Table: OwnerTableDocuments, ID: id}
}

// Kind maps an owner table to the asset kind stored under it.
func (o OwnerRef) Kind() AssetKind {
	switch o.Table {
	case OwnerTableProducts:
		return KindProductImage
	case OwnerTableSpaceImages:
		return KindSpaceImage
	case OwnerTableDocuments:
		return KindDocument
	}
	return ""
}

// Asset is one stored file and the single domain row that owns it. The
// composite unique index on (owner_table, owner_id) backs the at-most-one
// invariant; callers still run the lookup->delete->create replace sequence.
type Asset struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index"`
	Source      AssetSource    `json:"source" gorm:"type:varchar(32);not null"`
	URL         string         `json:"url" gorm:"type:varchar(1024);not null"`
	StoragePath *string        `json:"storage_path,omitempty" gorm:"type:varchar(1024)"`
	Bytes       *int64         `json:"bytes,omitempty"`
	MimeType    *string        `json:"mime_type,omitempty" gorm:"type:varchar(255)"`
	Kind        AssetKind      `json:"kind" gorm:"type:varchar(32);not null"`
	OwnerTable  OwnerTable     `json:"owner_table" gorm:"type:varchar(64);not null;uniqueIndex:idx_asset_owner"`
	OwnerID     uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;uniqueIndex:idx_asset_owner"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at" gorm:"not null;autoCreateTime"`
}

func (a *Asset) Owner() OwnerRef {
	return OwnerRef{Table: a.OwnerTable, ID: a.OwnerID}
}
