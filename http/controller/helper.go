package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/planhaus/asset-orchestrator/entity"
	"github.com/planhaus/asset-orchestrator/infra"
	"github.com/planhaus/asset-orchestrator/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	// webp is decode-only; registering it lets image.Decode accept webp
	// uploads, which are re-encoded to JPEG like everything else.
	_ "golang.org/x/image/webp"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// imageMimeTypes is the allow-list for the two image pipelines. Every
// accepted image is re-encoded to JPEG, so the original extension only
// matters for validation.
var imageMimeTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// documentMimeTypes maps accepted document types to their canonical extension.
var documentMimeTypes = map[string]string{
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"application/vnd.ms-excel": ".xls",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": ".xlsx",
	"text/plain": ".txt",
}

func validateImageType(contentType string) error {
	if _, ok := imageMimeTypes[contentType]; !ok {
		return fmt.Errorf("unsupported image type %q: allowed types are JPEG, PNG, GIF and WebP", contentType)
	}
	return nil
}

func validateDocumentType(contentType string) error {
	if _, ok := documentMimeTypes[contentType]; !ok {
		return fmt.Errorf("unsupported document type %q: allowed types are PDF, Word, Excel and plain text", contentType)
	}
	return nil
}

// documentExtension keeps the original filename's extension only when it is
// itself an allow-listed document extension, otherwise the content type's
// canonical one. Arbitrary extensions never reach the object key.
func documentExtension(filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range documentMimeTypes {
		if ext == allowed {
			return ext
		}
	}
	return documentMimeTypes[contentType]
}

func readMultipartFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return data, nil
}

// transformImage bounds the longest dimension and re-encodes to JPEG. The
// returned payload is what gets persisted, so its size is the one used for
// the quota check and the registry row. The stored dimensions come back too,
// for the asset metadata.
func (ctrl *Controller) transformImage(data []byte) ([]byte, int, int, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode image: %w", err)
	}

	bound := ctrl.Config.EnvConfig.Upload.ImageMaxDimension
	if b := img.Bounds(); b.Dx() > bound || b.Dy() > bound {
		img = imaging.Fit(img, bound, bound, imaging.Lanczos)
	}

	var buf bytes.Buffer
	err = imaging.Encode(&buf, img, imaging.JPEG,
		imaging.JPEGQuality(ctrl.Config.EnvConfig.Upload.ImageJPEGQuality))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to encode image: %w", err)
	}
	bounds := img.Bounds()
	return buf.Bytes(), bounds.Dx(), bounds.Dy(), nil
}

// imageAssetMetadata records what the stored JPEG no longer shows: the
// original upload's name and raw size, plus the stored dimensions.
func imageAssetMetadata(fileHeader *multipart.FileHeader, width, height int) datatypes.JSON {
	meta, err := json.Marshal(map[string]interface{}{
		"original_name":  fileHeader.Filename,
		"original_bytes": fileHeader.Size,
		"width":          width,
		"height":         height,
	})
	if err != nil {
		return nil
	}
	return datatypes.JSON(meta)
}

func documentAssetMetadata(fileHeader *multipart.FileHeader) datatypes.JSON {
	meta, err := json.Marshal(map[string]interface{}{
		"original_name":  fileHeader.Filename,
		"original_bytes": fileHeader.Size,
	})
	if err != nil {
		return nil
	}
	return datatypes.JSON(meta)
}

// StorageCheck is the quota guard's verdict for one incoming file.
type StorageCheck struct {
	Allowed     bool
	CurrentUsed int64
	LimitBytes  int64
}

func (s *StorageCheck) Message() string {
	return fmt.Sprintf("Storage limit exceeded: %s of %s used",
		humanize.IBytes(uint64(s.CurrentUsed)), humanize.IBytes(uint64(s.LimitBytes)))
}

// checkStorageLimit compares current usage plus the incoming size against the
// plan ceiling. knownUsed skips the usage read when the caller already has it.
// For images the caller passes the post-transform size, since that is what
// gets persisted; the check still runs before any upload cost is paid.
func (ctrl *Controller) checkStorageLimit(user *entity.User, incomingBytes int64, knownUsed *int64) (*StorageCheck, error) {
	limit := ctrl.Config.EnvConfig.StorageLimitBytes(user.Plan)

	var used int64
	if knownUsed != nil {
		used = *knownUsed
	} else {
		var err error
		used, err = ctrl.Repository.StorageUsageRepo.BytesUsed(user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to read storage usage: %w", err)
		}
	}

	return &StorageCheck{
		Allowed:     used+incomingBytes <= limit,
		CurrentUsed: used,
		LimitBytes:  limit,
	}, nil
}

// replaceAsset realizes "at most one asset per owner": inside one transaction
// it deletes any existing row for the owner and creates the new one. It
// returns the new asset id and, when a row was replaced, the superseded URL
// so the caller can best-effort delete the old object.
func (ctrl *Controller) replaceAsset(asset *entity.Asset) (uuid.UUID, *string, error) {
	var newID uuid.UUID
	var supersededURL *string

	err := ctrl.Infra.Postgres.DB.Transaction(func(tx *gorm.DB) error {
		repo := ctrl.Repository.WithTransaction(tx)

		existing, err := repo.AssetRepo.FindByOwner(asset.Owner())
		if err != nil {
			return err
		}
		if existing != nil {
			url := existing.URL
			supersededURL = &url
			if err := repo.AssetRepo.DeleteByID(existing.ID); err != nil {
				return err
			}
		}

		newID, err = repo.AssetRepo.Create(asset)
		return err
	})
	if err != nil {
		return uuid.Nil, nil, err
	}
	return newID, supersededURL, nil
}

// deleteAssetAndObject removes the registry row for an owner and best-effort
// deletes the underlying object. A missing row or missing object is success.
func (ctrl *Controller) deleteAssetAndObject(ctx context.Context, owner entity.OwnerRef, url string) error {
	assetID, err := ctrl.Repository.AssetRepo.FindIDByOwner(owner)
	if err != nil {
		return err
	}
	if assetID != uuid.Nil {
		if err := ctrl.Repository.AssetRepo.DeleteByID(assetID); err != nil {
			return err
		}
	}

	if _, err := ctrl.Infra.Store.DeleteObjectByURL(ctx, url); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "Failed to delete stored object %s: %v", url, err)
	}
	return nil
}

// respondUploadError maps a failed object-store call to the upstream error
// response; anything else is an internal error.
func respondUploadError(c *gin.Context, err error) {
	var storeErr *infra.StoreError
	if errors.As(err, &storeErr) {
		utils.JSON502(c, "Upload failed, please try again later")
		return
	}
	utils.JSON500(c, "Internal error")
}

func (ctrl *Controller) recordUpload(ctx context.Context, kind entity.AssetKind, size int64) {
	attrs := metric.WithAttributes(attribute.String("kind", string(kind)))
	ctrl.Infra.Telemetry.UploadsTotal.Add(ctx, 1, attrs)
	ctrl.Infra.Telemetry.UploadedBytes.Add(ctx, size, attrs)
}
