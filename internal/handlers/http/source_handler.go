package http

import (
	"net/http"

	"sourcehub/internal/core/domain"
	"sourcehub/internal/core/services"

	"github.com/gin-gonic/gin"
)

type SourceHandler struct {
	sourceService services.SourceService
}

func NewSourceHandler(sourceService services.SourceService) *SourceHandler {
	return &SourceHandler{
		sourceService: sourceService,
	}
}

func (h *SourceHandler) SetupRoutes(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	api := router.Group("/api/v1")
	api.Use(authMiddleware)
	{
		api.POST("/sources", h.RegisterSource)
		api.GET("/sources", h.ListSources)
		api.GET("/sources/:id", h.GetSource)
		api.GET("/sources/:id/videos", h.ListVideos)
	}
}

type RegisterSourceRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=100"`
	ChannelID string `json:"source_id" binding:"required,min=1,max=100"`
}

// RegisterSource registers a YouTube channel as a content source. A channel
// that is already registered yields 409 with the existing record rather than
// an error; the store's unique constraint makes the operation idempotent even
// under concurrent submissions.
func (h *SourceHandler) RegisterSource(c *gin.Context) {
	var req RegisterSourceRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.sourceService.Register(c.Request.Context(), req.Name, req.ChannelID)
	if err != nil {
		c.Error(err)
		return
	}

	if result.Outcome == services.RegisterDuplicate {
		resp := gin.H{"status": string(result.Outcome)}
		if result.Source != nil {
			resp["source"] = result.Source
		}
		c.JSON(http.StatusConflict, resp)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": string(result.Outcome),
		"source": result.Source,
	})
}

func (h *SourceHandler) GetSource(c *gin.Context) {
	sourceID := domain.SourceID(c.Param("id"))

	source, err := h.sourceService.GetSource(c.Request.Context(), sourceID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"source": source,
	})
}

func (h *SourceHandler) ListSources(c *gin.Context) {
	sources, err := h.sourceService.ListSources(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sources": sources,
	})
}

func (h *SourceHandler) ListVideos(c *gin.Context) {
	sourceID := domain.SourceID(c.Param("id"))

	videos, err := h.sourceService.ListVideos(c.Request.Context(), sourceID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"videos": videos,
	})
}
