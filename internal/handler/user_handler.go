package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/algotrack/backend/internal/domain"
	"github.com/algotrack/backend/internal/middleware"
	"github.com/algotrack/backend/internal/service"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *service.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// GetCurrentUser returns the currently authenticated user, creating the
// record on first use
// GET /api/users/me
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	identity, ok := middleware.RequireIdentity(c)
	if !ok {
		return
	}

	profile, err := h.userService.Profile(c.Request.Context(), identity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetDashboard returns course progress and platform totals
// GET /api/users/me/dashboard
func (h *UserHandler) GetDashboard(c *gin.Context) {
	identity, ok := middleware.RequireIdentity(c)
	if !ok {
		return
	}

	dashboard, err := h.userService.GetDashboard(c.Request.Context(), identity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// SetPlanRequest is the body of an admin plan change
type SetPlanRequest struct {
	Plan string `json:"plan" binding:"required"`
}

// SetPlan changes another user's plan. Admin only.
// PATCH /api/admin/users/:id/plan
func (h *UserHandler) SetPlan(c *gin.Context) {
	identity, ok := middleware.RequireIdentity(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	var req SetPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	user, err := h.userService.SetPlan(c.Request.Context(), identity, id, domain.Plan(req.Plan))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
