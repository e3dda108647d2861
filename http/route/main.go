package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/planhaus/asset-orchestrator/http/controller"
	middlewares "github.com/planhaus/asset-orchestrator/http/middleware"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.Default()
	middles, err := middlewares.NewMiddlewares(ctrl)
	if err != nil {
		panic(err)
	}

	r.Use(middles.CORSMiddleware)

	apiRoutes := r.Group("/api/v1/assets")
	{
		apiRoutes.Use(middles.AuthMiddleware)

		apiRoutes.POST("/products/:product_id/image", ctrl.UploadProductImage)
		apiRoutes.POST("/projects/:project_id/spaces/:space_id/images/:image_id", ctrl.UploadSpaceImage)
		apiRoutes.POST("/projects/:project_id/documents/:document_id/file", ctrl.UploadDocument)

		apiRoutes.DELETE("/images", ctrl.DeleteImage)
		apiRoutes.DELETE("/documents", ctrl.DeleteDocumentFile)
	}

	// Internal surface, gated by the service private key instead of a session.
	internalRoutes := r.Group("/internal")
	{
		internalRoutes.DELETE("/users/:user_id/files", ctrl.DeleteAllUserFiles)
	}

	return r
}
