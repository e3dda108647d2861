package controller

import (
	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/planhaus/asset-orchestrator/entity"
	"github.com/planhaus/asset-orchestrator/http/controller/dto"
	"github.com/planhaus/asset-orchestrator/utils"
)

// UploadSpaceImage stores an image for an id-addressed slot under a space.
// The ownership chain is space -> project -> caller; the slot row is created
// on first upload.
func (ctrl *Controller) UploadSpaceImage(c *gin.Context) {
	ctx, span := ctrl.Infra.Telemetry.Tracer.Start(c.Request.Context(), "upload.space_image")
	defer span.End()

	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized")
		return
	}

	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		utils.JSON400(c, "Invalid project_id format")
		return
	}
	spaceID, err := uuid.Parse(c.Param("space_id"))
	if err != nil {
		utils.JSON400(c, "Invalid space_id format")
		return
	}
	imageID, err := uuid.Parse(c.Param("image_id"))
	if err != nil {
		utils.JSON400(c, "Invalid image_id format")
		return
	}

	project, err := ctrl.Repository.ProjectRepo.FindByID(projectID)
	if err != nil {
		utils.JSON404(c, "Project not found")
		return
	}
	if project.UserID != userID {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[SpaceImage] User %s attempted upload for project %s owned by %s", userID, projectID, project.UserID)
		utils.JSON403(c, "Forbidden: you don't own this project")
		return
	}

	space, err := ctrl.Repository.SpaceRepo.FindByID(spaceID)
	if err != nil || space.ProjectID != projectID {
		utils.JSON404(c, "Space not found or does not belong to project")
		return
	}

	// An existing slot must hang off this space. Without this check a caller
	// could name a slot id under someone else's space and repoint it.
	slot, err := ctrl.Repository.SpaceRepo.FindImageByID(imageID)
	if err != nil {
		utils.JSON500(c, "Internal error")
		return
	}
	if slot != nil && slot.SpaceID != spaceID {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[SpaceImage] User %s attempted upload for image slot %s under space %s, slot belongs to space %s", userID, imageID, spaceID, slot.SpaceID)
		utils.JSON404(c, "Image slot not found or does not belong to space")
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
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[SpaceImage] Failed to read upload")
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
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[SpaceImage] Quota check failed")
		utils.JSON500(c, "Internal error")
		return
	}
	if !check.Allowed {
		utils.JSON413(c, check.Message(), check.CurrentUsed, check.LimitBytes)
		return
	}

	key := utils.SpaceImageKey(userID, projectID, spaceID, imageID, ".jpg")
	url, err := ctrl.Infra.Store.UploadObject(ctx, transformed, "image/jpeg", key)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[SpaceImage] Object store upload failed")
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
		Kind:        entity.KindSpaceImage,
		OwnerTable:  entity.OwnerTableSpaceImages,
		OwnerID:     imageID,
		Metadata:    imageAssetMetadata(fileHeader, width, height),
	}

	assetID, supersededURL, err := ctrl.replaceAsset(asset)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[SpaceImage] Registry write failed after upload, object %s is orphaned", key)
		utils.JSON500(c, "Internal error")
		return
	}

	if supersededURL != nil && *supersededURL != url {
		if _, err := ctrl.Infra.Store.DeleteObjectByURL(ctx, *supersededURL); err != nil {
			ctrl.Infra.Logger.WarningWithContextf(ctx, "[SpaceImage] Failed to delete superseded object %s: %v", *supersededURL, err)
		}
	}

	// First upload for this slot creates the row; later ones repoint it.
	if slot == nil {
		err = ctrl.Repository.SpaceRepo.CreateImage(&entity.SpaceImage{
			ID:       imageID,
			SpaceID:  spaceID,
			ImageURL: &url,
		})
	} else {
		err = ctrl.Repository.SpaceRepo.UpdateImageURL(imageID, &url)
	}
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[SpaceImage] Failed to update image pointer")
		utils.JSON500(c, "Internal error")
		return
	}

	ctrl.recordUpload(ctx, entity.KindSpaceImage, size)
	ctrl.Infra.Logger.InfoWithContextf(ctx, "[SpaceImage] Stored %s (%s) for space %s", key, humanize.IBytes(uint64(size)), spaceID)
	utils.JSON200(c, dto.UploadResultDTO{URL: url, Bytes: size, AssetID: assetID})
}
