package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/planhaus/asset-orchestrator/utils"
)

// DeleteAllUserFiles sweeps every stored object under a deleted account's key
// prefix. It is an internal endpoint gated by the service private key.
// Registry rows are removed by domain-row cascade, not here. With ?async=true
// the sweep is handed to the teardown consumer instead of running inline.
func (ctrl *Controller) DeleteAllUserFiles(c *gin.Context) {
	ctx := c.Request.Context()

	if c.GetHeader("Private-Key") != ctrl.Config.EnvConfig.PrivateKey || ctrl.Config.EnvConfig.PrivateKey == "" {
		utils.JSON401(c, "Unauthorized")
		return
	}

	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		utils.JSON400(c, "Invalid user_id format")
		return
	}

	if c.Query("async") == "true" {
		if err := ctrl.Infra.Produce.AccountService.PublishTeardown(ctx, userID.String(), "api"); err != nil {
			ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Account] Failed to publish teardown for user %s", userID)
			utils.JSON500(c, "Failed to enqueue teardown")
			return
		}
		utils.JSON200(c, gin.H{"ok": true, "enqueued": true})
		return
	}

	deleted, err := ctrl.Infra.Store.DeleteAllByPrefix(ctx, userID)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Account] Teardown sweep failed for user %s after %d deletions", userID, deleted)
		utils.JSON502(c, "Object store sweep failed")
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Account] Deleted %d stored objects for user %s", deleted, userID)
	utils.JSON200(c, gin.H{"ok": true, "deleted": deleted})
}
