package controller

import (
	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/planhaus/asset-orchestrator/entity"
	"github.com/planhaus/asset-orchestrator/http/controller/dto"
	"github.com/planhaus/asset-orchestrator/utils"
)

// UploadProductImage runs the full per-request protocol for a product image:
// ownership, caps, type check, transform, quota, store upload, registry
// replace, pointer update. Steps run strictly in this order so a rejected
// request never pays transform or upload cost.
func (ctrl *Controller) UploadProductImage(c *gin.Context) {
	ctx, span := ctrl.Infra.Telemetry.Tracer.Start(c.Request.Context(), "upload.product_image")
	defer span.End()

	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized")
		return
	}

	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		utils.JSON400(c, "Invalid product_id format")
		return
	}

	product, err := ctrl.Repository.ProductRepo.FindByID(productID)
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[ProductImage] Product %s not found", productID)
		utils.JSON404(c, "Product not found")
		return
	}
	if product.UserID != userID {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[ProductImage] User %s attempted upload for product %s owned by %s", userID, productID, product.UserID)
		utils.JSON403(c, "Forbidden: you don't own this product")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.JSON400(c, "Failed to get file: "+err.Error())
		return
	}

	maxBytes := ctrl.Config.EnvConfig.Upload.ImageMaxBytes
	if fileHeader.Size > maxBytes {
		utils.JSON400(c, "File too large: images are limited to "+humanize.IBytes(uint64(maxBytes)))
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if err := validateImageType(contentType); err != nil {
		utils.JSON400(c, err.Error())
		return
	}

	raw, err := readMultipartFile(fileHeader)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[ProductImage] Failed to read upload")
		utils.JSON400(c, "Failed to read file")
		return
	}

	transformed, width, height, err := ctrl.transformImage(raw)
	if err != nil {
		utils.JSON400(c, "Invalid or corrupted image file")
		return
	}

	user, err := ctrl.Repository.UserRepo.FindByID(userID)
	if err != nil {
		utils.JSON401(c, "Unauthorized: account not found")
		return
	}
	check, err := ctrl.checkStorageLimit(user, int64(len(transformed)), nil)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[ProductImage] Quota check failed")
		utils.JSON500(c, "Internal error")
		return
	}
	if !check.Allowed {
		utils.JSON413(c, check.Message(), check.CurrentUsed, check.LimitBytes)
		return
	}

	key := utils.ProductImageKey(userID, productID, ".jpg")
	url, err := ctrl.Infra.Store.UploadObject(ctx, transformed, "image/jpeg", key)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[ProductImage] Object store upload failed")
		respondUploadError(c, err)
		return
	}

	size := int64(len(transformed))
	mime := "image/jpeg"
	asset := &entity.Asset{
		UserID:      userID,
		Source:      entity.SourceNativeStore,
		URL:         url,
		StoragePath: &key,
		Bytes:       &size,
		MimeType:    &mime,
		Kind:        entity.KindProductImage,
		OwnerTable:  entity.OwnerTableProducts,
		OwnerID:     productID,
		Metadata:    imageAssetMetadata(fileHeader, width, height),
	}

	assetID, supersededURL, err := ctrl.replaceAsset(asset)
	if err != nil {
		// The object is already stored: this leaves an orphan, reconciled
		// only at account teardown, not rolled back here.
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[ProductImage] Registry write failed after upload, object %s is orphaned", key)
		utils.JSON500(c, "Internal error")
		return
	}

	if supersededURL != nil && *supersededURL != url {
		if _, err := ctrl.Infra.Store.DeleteObjectByURL(ctx, *supersededURL); err != nil {
			ctrl.Infra.Logger.WarningWithContextf(ctx, "[ProductImage] Failed to delete superseded object %s: %v", *supersededURL, err)
		}
	}

	if err := ctrl.Repository.ProductRepo.UpdateImageURL(productID, &url); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[ProductImage] Failed to update product pointer")
		utils.JSON500(c, "Internal error")
		return
	}

	ctrl.recordUpload(ctx, entity.KindProductImage, size)
	ctrl.Infra.Logger.InfoWithContextf(ctx, "[ProductImage] Stored %s (%s) for product %s", key, humanize.IBytes(uint64(size)), productID)
	utils.JSON200(c, dto.UploadResultDTO{URL: url, Bytes: size, AssetID: assetID})
}
