package dto

import "github.com/google/uuid"

// UploadResultDTO is the success payload of every upload endpoint. Bytes is
// the persisted size, which for images is the post-transform size.
type UploadResultDTO struct {
	URL     string    `json:"url"`
	Bytes   int64     `json:"bytes"`
	AssetID uuid.UUID `json:"asset_id"`
}
