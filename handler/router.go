package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/docqa/middleware"
	"github.com/tieubaoca/docqa/service"
)

// NewRouter wires the HTTP routes of the document service.
func NewRouter(documentService *service.DocumentService, maxUpload int64, logger *slog.Logger) *gin.Engine {
	corsHandler := NewCorsHandler()
	archiveHandler := NewArchiveHandler(documentService, maxUpload, logger)
	healthHandler := NewHealthHandler(documentService.AI())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(corsHandler.CorsMiddleware)
	if maxUpload > 0 {
		// Leave room for the other multipart fields.
		router.MaxMultipartMemory = maxUpload + 1<<20
	}

	router.GET("/", HandleIndex)
	router.GET("/healthz", healthHandler.HandleHealth)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/archives/extract", archiveHandler.HandleExtract)
		apiV1.POST("/archives/extract/stream", archiveHandler.HandleExtractStream)
		apiV1.POST("/archives/ask", archiveHandler.HandleAsk)
	}
	return router
}
