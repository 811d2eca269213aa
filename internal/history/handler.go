package history

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// --------------------------------------------------
// List scan history (paginated, most recent first)
// --------------------------------------------------
func (h *Handler) List(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "20"))
	if err != nil || size < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid size"})
		return
	}

	records, total, err := h.manager.Paginate(c.Request.Context(), page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"total":   total,
		"page":    page,
		"size":    size,
	})
}

// --------------------------------------------------
// Toggle favorite (favorites survive eviction)
// --------------------------------------------------
func (h *Handler) ToggleFavorite(c *gin.Context) {
	record, err := h.manager.ToggleFavorite(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, record)
}

// --------------------------------------------------
// Delete one record
// --------------------------------------------------
func (h *Handler) Delete(c *gin.Context) {
	err := h.manager.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

// --------------------------------------------------
// Storage stats + quota (ADMIN)
// --------------------------------------------------
func (h *Handler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	size, err := h.manager.StorageSizeBytes(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	quota, err := h.manager.Quota(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	pending, err := h.manager.PendingUploads(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"storage_size_bytes": size,
		"quota_bytes":        quota,
		"pending_uploads":    len(pending),
	})
}

func (h *Handler) SetQuota(c *gin.Context) {
	var req struct {
		Bytes int64 `json:"bytes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.manager.SetQuota(c.Request.Context(), req.Bytes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"quota_bytes": req.Bytes})
}
