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

// CourseHandler handles course and progress requests
type CourseHandler struct {
	courseService *service.CourseService
	logger        *zap.Logger
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(courseService *service.CourseService, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
		logger:        logger,
	}
}

// GetCourses returns all courses
// GET /api/courses
func (h *CourseHandler) GetCourses(c *gin.Context) {
	courses, err := h.courseService.ListCourses(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"courses": courses,
		"count":   len(courses),
	})
}

// GetCourse returns a course with the caller's progress
// GET /api/courses/:slug
func (h *CourseHandler) GetCourse(c *gin.Context) {
	identity, ok := middleware.RequireIdentity(c)
	if !ok {
		return
	}

	course, err := h.courseService.GetCourse(c.Request.Context(), identity, c.Param("slug"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// UpdateProgress marks a question solved or bookmarked
// PATCH /api/questions/:id/progress
func (h *CourseHandler) UpdateProgress(c *gin.Context) {
	identity, ok := middleware.RequireIdentity(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid question ID",
		})
		return
	}

	var update domain.ProgressUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	question, err := h.courseService.UpdateProgress(c.Request.Context(), identity, id, update)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// GetBookmarks returns the caller's bookmarked questions
// GET /api/questions/bookmarks
func (h *CourseHandler) GetBookmarks(c *gin.Context) {
	identity, ok := middleware.RequireIdentity(c)
	if !ok {
		return
	}

	questions, err := h.courseService.ListBookmarks(c.Request.Context(), identity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"questions": questions,
		"count":     len(questions),
	})
}
