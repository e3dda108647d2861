package controller

import (
	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/planhaus/asset-orchestrator/entity"
	"github.com/planhaus/asset-orchestrator/http/controller/dto"
	"github.com/planhaus/asset-orchestrator/utils"
)

// UploadDocument attaches a file to an existing document row. The row must be
// created by the caller beforehand; rejecting unknown ids is what prevents
// bytes from ever being persisted for a nonexistent owner. Documents skip the
// image transform, so the raw size is the persisted size.
func (ctrl *Controller) UploadDocument(c *gin.Context) {
	ctx, span := ctrl.Infra.Telemetry.Tracer.Start(c.Request.Context(), "upload.document")
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
	documentID, err := uuid.Parse(c.Param("document_id"))
	if err != nil {
		utils.JSON400(c, "Invalid document_id format")
		return
	}

	project, err := ctrl.Repository.ProjectRepo.FindByID(projectID)
	if err != nil {
		utils.JSON404(c, "Project not found")
		return
	}
	if project.UserID != userID {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Document] User %s attempted upload for project %s owned by %s", userID, projectID, project.UserID)
		utils.JSON403(c, "Forbidden: you don't own this project")
		return
	}

	document, err := ctrl.Repository.DocumentRepo.FindByIDAndProject(documentID, projectID)
	if err != nil {
		utils.JSON500(c, "Internal error")
		return
	}
	if document == nil {
		utils.JSON400(c, "You must create the document before uploading its file")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.JSON400(c, "Failed to get file: "+err.Error())
		return
	}

	maxBytes := ctrl.Config.EnvConfig.Upload.DocumentMaxBytes
	if fileHeader.Size > maxBytes {
		utils.JSON400(c, "File too large: documents are limited to "+humanize.IBytes(uint64(maxBytes)))
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if err := validateDocumentType(contentType); err != nil {
		utils.JSON400(c, err.Error())
		return
	}

	raw, err := readMultipartFile(fileHeader)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Document] Failed to read upload")
		utils.JSON400(c, "Failed to read file")
		return
	}

	user, err := ctrl.Repository.UserRepo.FindByID(userID)
	if err != nil {
		utils.JSON401(c, "Unauthorized: account not found")
		return
	}
	check, err := ctrl.checkStorageLimit(user, int64(len(raw)), nil)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Document] Quota check failed")
		utils.JSON500(c, "Internal error")
		return
	}
	if !check.Allowed {
		utils.JSON413(c, check.Message(), check.CurrentUsed, check.LimitBytes)
		return
	}

	ext := documentExtension(fileHeader.Filename, contentType)
	key := utils.DocumentKey(userID, projectID, documentID, ext)
	url, err := ctrl.Infra.Store.UploadObject(ctx, raw, contentType, key)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Document] Object store upload failed")
		respondUploadError(c, err)
		return
	}

	size := int64(len(raw))
	asset := &entity.Asset{
		UserID:      userID,
		Source:      entity.SourceNativeStore,
		URL:         url,
		StoragePath: &key,
		Bytes:       &size,
		MimeType:    &contentType,
		Kind:        entity.KindDocument,
		OwnerTable:  entity.OwnerTableDocuments,
		OwnerID:     documentID,
		Metadata:    documentAssetMetadata(fileHeader),
	}

	assetID, supersededURL, err := ctrl.replaceAsset(asset)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Document] Registry write failed after upload, object %s is orphaned", key)
		utils.JSON500(c, "Internal error")
		return
	}

	if supersededURL != nil && *supersededURL != url {
		if _, err := ctrl.Infra.Store.DeleteObjectByURL(ctx, *supersededURL); err != nil {
			ctrl.Infra.Logger.WarningWithContextf(ctx, "[Document] Failed to delete superseded object %s: %v", *supersededURL, err)
		}
	}

	if err := ctrl.Repository.DocumentRepo.UpdateFile(documentID, &url, &size, &contentType); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Document] Failed to update document pointer")
		utils.JSON500(c, "Internal error")
		return
	}

	ctrl.recordUpload(ctx, entity.KindDocument, size)
	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Document] Stored %s (%s) for document %s", key, humanize.IBytes(uint64(size)), documentID)
	utils.JSON200(c, dto.UploadResultDTO{URL: url, Bytes: size, AssetID: assetID})
}

// DeleteDocumentFile detaches and removes a document's stored file. The URL
// identifies the document; missing registry rows and missing objects are
// treated as already-done.
func (ctrl *Controller) DeleteDocumentFile(c *gin.Context) {
	ctx := c.Request.Context()

	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized")
		return
	}

	url := c.Query("url")
	if url == "" {
		utils.JSON400(c, "url is required")
		return
	}

	document, err := ctrl.Repository.DocumentRepo.FindByFileURL(url)
	if err != nil {
		utils.JSON500(c, "Internal error")
		return
	}
	if document == nil {
		utils.JSON404(c, "Document not found")
		return
	}

	project, err := ctrl.Repository.ProjectRepo.FindByID(document.ProjectID)
	if err != nil {
		utils.JSON404(c, "Project not found")
		return
	}
	if project.UserID != userID {
		utils.JSON403(c, "Forbidden: you don't own this project")
		return
	}

	if err := ctrl.deleteAssetAndObject(ctx, entity.DocumentOwner(document.ID), url); err != nil {
		utils.JSON500(c, "Internal error")
		return
	}

	if err := ctrl.Repository.DocumentRepo.UpdateFile(document.ID, nil, nil, nil); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Document] Failed to clear document pointer")
		utils.JSON500(c, "Internal error")
		return
	}

	utils.JSON200(c, gin.H{"ok": true})
}
