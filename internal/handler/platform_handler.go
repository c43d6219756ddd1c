package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/algotrack/backend/internal/domain"
	"github.com/algotrack/backend/internal/middleware"
	"github.com/algotrack/backend/internal/service"
)

// PlatformHandler handles platform link and sync requests
type PlatformHandler struct {
	platformService *service.PlatformService
	linkService     *service.LinkService
	logger          *zap.Logger
}

// NewPlatformHandler creates a new platform handler
func NewPlatformHandler(platformService *service.PlatformService, linkService *service.LinkService, logger *zap.Logger) *PlatformHandler {
	return &PlatformHandler{
		platformService: platformService,
		linkService:     linkService,
		logger:          logger,
	}
}

// GetSupported lists the supported platforms and their capabilities
// GET /api/platforms
func (h *PlatformHandler) GetSupported(c *gin.Context) {
	platforms := h.platformService.Supported()
	c.JSON(http.StatusOK, gin.H{
		"platforms": platforms,
		"count":     len(platforms),
	})
}

// GetLinked returns the caller's linked platforms
// GET /api/platforms/linked
func (h *PlatformHandler) GetLinked(c *gin.Context) {
	identity, ok := middleware.RequireIdentity(c)
	if !ok {
		return
	}

	links, err := h.linkService.ListLinked(c.Request.Context(), identity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	responses := make([]domain.LinkedPlatformResponse, len(links))
	for i := range links {
		responses[i] = links[i].ToResponse()
	}
	c.JSON(http.StatusOK, gin.H{
		"platforms": responses,
		"count":     len(responses),
	})
}

// Link links a platform username to the caller
// POST /api/platforms/link
func (h *PlatformHandler) Link(c *gin.Context) {
	identity, ok := middleware.RequireIdentity(c)
	if !ok {
		return
	}

	var req domain.LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "platform and username are required",
		})
		return
	}

	result, err := h.linkService.Link(c.Request.Context(), identity, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	status := http.StatusOK
	if result.IsNewLink {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"platform":    result.Link.ToResponse(),
		"is_new_link": result.IsNewLink,
	})
}

// Sync refreshes one linked platform
// POST /api/platforms/:platform/sync
func (h *PlatformHandler) Sync(c *gin.Context) {
	identity, ok := middleware.RequireIdentity(c)
	if !ok {
		return
	}

	link, err := h.linkService.Sync(c.Request.Context(), identity, c.Param("platform"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, link.ToResponse())
}

// SyncAll refreshes every linked platform and reports each outcome
// POST /api/platforms/sync
func (h *PlatformHandler) SyncAll(c *gin.Context) {
	identity, ok := middleware.RequireIdentity(c)
	if !ok {
		return
	}

	outcomes, err := h.linkService.SyncAll(c.Request.Context(), identity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	failed := 0
	for _, o := range outcomes {
		if o.Status == domain.SyncStatusFailed {
			failed++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"results":   outcomes,
		"succeeded": len(outcomes) - failed,
		"failed":    failed,
	})
}

// Unlink removes a linked platform
// DELETE /api/platforms/:platform
func (h *PlatformHandler) Unlink(c *gin.Context) {
	identity, ok := middleware.RequireIdentity(c)
	if !ok {
		return
	}

	if err := h.linkService.Unlink(c.Request.Context(), identity, c.Param("platform")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetLogs returns the caller's sync history, newest first
// GET /api/platforms/logs?limit=
func (h *PlatformHandler) GetLogs(c *gin.Context) {
	identity, ok := middleware.RequireIdentity(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "limit must be a number",
			})
			return
		}
		limit = n
	}

	logs, err := h.linkService.ListSyncLogs(c.Request.Context(), identity, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}
