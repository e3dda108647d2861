package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/planhaus/asset-orchestrator/entity"
	"github.com/planhaus/asset-orchestrator/utils"
)

// DeleteImage removes a stored image by its public URL. The URL is resolved
// against product images first, then space-image slots; a URL matching
// neither is a 404. Ownership runs through the same chains as upload.
func (ctrl *Controller) DeleteImage(c *gin.Context) {
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

	product, err := ctrl.Repository.ProductRepo.FindByImageURL(url)
	if err != nil {
		utils.JSON500(c, "Internal error")
		return
	}
	if product != nil {
		if product.UserID != userID {
			utils.JSON403(c, "Forbidden: you don't own this product")
			return
		}
		if err := ctrl.deleteAssetAndObject(ctx, entity.ProductOwner(product.ID), url); err != nil {
			utils.JSON500(c, "Internal error")
			return
		}
		if err := ctrl.Repository.ProductRepo.UpdateImageURL(product.ID, nil); err != nil {
			ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[ImageDelete] Failed to clear product pointer")
			utils.JSON500(c, "Internal error")
			return
		}
		utils.JSON200(c, gin.H{"ok": true})
		return
	}

	slot, err := ctrl.Repository.SpaceRepo.FindImageByURL(url)
	if err != nil {
		utils.JSON500(c, "Internal error")
		return
	}
	if slot == nil {
		utils.JSON404(c, "Image not found")
		return
	}

	space, err := ctrl.Repository.SpaceRepo.FindByID(slot.SpaceID)
	if err != nil {
		utils.JSON404(c, "Space not found")
		return
	}
	project, err := ctrl.Repository.ProjectRepo.FindByID(space.ProjectID)
	if err != nil {
		utils.JSON404(c, "Project not found")
		return
	}
	if project.UserID != userID {
		utils.JSON403(c, "Forbidden: you don't own this project")
		return
	}

	if err := ctrl.deleteAssetAndObject(ctx, entity.SpaceImageOwner(slot.ID), url); err != nil {
		utils.JSON500(c, "Internal error")
		return
	}
	if err := ctrl.Repository.SpaceRepo.UpdateImageURL(slot.ID, nil); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[ImageDelete] Failed to clear space image pointer")
		utils.JSON500(c, "Internal error")
		return
	}

	utils.JSON200(c, gin.H{"ok": true})
}
