package pipeline

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"menureader/internal/menu"
	"menureader/internal/request"
)

type Handler struct {
	orch *Orchestrator
}

func NewHandler(orch *Orchestrator) *Handler {
	return &Handler{orch: orch}
}

// --------------------------------------------------
// Analyze an uploaded menu photo
// --------------------------------------------------
func (h *Handler) Analyze(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing image file"})
		return
	}

	if err := menu.ValidateImageFilename(fileHeader.Filename); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	targetLang := c.DefaultPostForm("lang", "en")

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable image file"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil || len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty image file"})
		return
	}

	result, err := h.orch.Analyze(c.Request.Context(), data, targetLang)
	if err != nil {
		if errors.Is(err, ErrAlreadyInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}

		var apiErr *request.APIError
		if errors.As(err, &apiErr) {
			c.JSON(http.StatusBadGateway, gin.H{
				"error":       apiErr.Message,
				"suggestions": apiErr.Suggestions(),
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result": result,
		"images": h.orch.ImageStates(),
	})
}

// --------------------------------------------------
// Poll run status (FOR FRONTEND POLLING)
// --------------------------------------------------
func (h *Handler) GetStatus(c *gin.Context) {
	stage, progress := h.orch.Stage()
	c.JSON(http.StatusOK, gin.H{
		"stage":    stage,
		"progress": progress,
	})
}

// --------------------------------------------------
// Per-dish image map of the latest run
// --------------------------------------------------
func (h *Handler) GetImages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"images": h.orch.ImageStates()})
}
