package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/docqa/service"
	"github.com/tieubaoca/docqa/types"
	"github.com/tieubaoca/docqa/web"
)

type HealthHandler struct {
	aiService service.AIService
}

func NewHealthHandler(aiService service.AIService) *HealthHandler {
	return &HealthHandler{aiService: aiService}
}

func (h *HealthHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, types.HealthResponse{
		Status:   "ok",
		Provider: h.aiService.Provider(),
		Model:    h.aiService.Model(),
	})
}

// HandleIndex serves the single-page upload form.
func HandleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", web.IndexHTML)
}
