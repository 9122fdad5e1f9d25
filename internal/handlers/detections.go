package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"skylens/internal/apperrors"
	"skylens/internal/services"
)

// DetectionsHandler handles HTTP requests for AI-detection analyses
type DetectionsHandler struct {
	service *services.DetectionService
}

// NewDetectionsHandler creates a new detections handler
func NewDetectionsHandler(db *gorm.DB, classifierClient services.ClassifierAPI) *DetectionsHandler {
	return &DetectionsHandler{
		service: services.NewDetectionService(db, classifierClient),
	}
}

// Create handles POST /api/v1/ai-detections
func (h *DetectionsHandler) Create(c *gin.Context) {
	var req services.DetectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Wrap(apperrors.KindInvalidInput, "invalid request body", err))
		return
	}

	detection, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, detection)
}

// List handles GET /api/v1/ai-detections
func (h *DetectionsHandler) List(c *gin.Context) {
	detections, err := h.service.FindAll()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detections)
}

// Get handles GET /api/v1/ai-detections/:id
func (h *DetectionsHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	detection, err := h.service.FindByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detection)
}

// Update handles PUT /api/v1/ai-detections/:id
func (h *DetectionsHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req services.DetectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Wrap(apperrors.KindInvalidInput, "invalid request body", err))
		return
	}

	detection, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detection)
}

// Delete handles DELETE /api/v1/ai-detections/:id
func (h *DetectionsHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Restore handles PATCH /api/v1/ai-detections/:id/restore
func (h *DetectionsHandler) Restore(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	detection, err := h.service.Restore(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detection)
}

// Analyze handles POST /api/v1/ai-detections/analyze
func (h *DetectionsHandler) Analyze(c *gin.Context) {
	var req services.DetectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Wrap(apperrors.KindInvalidInput, "invalid request body", err))
		return
	}

	detection, err := h.service.Analyze(c.Request.Context(), req.TextContent)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, detection)
}

// HealthCheck handles GET /health
func (h *DetectionsHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "skylens",
	})
}

// parseID parses the :id path parameter, writing the error response itself
// on failure.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.Newf(apperrors.KindInvalidInput, "invalid id format: %s", c.Param("id")))
		return uuid.Nil, false
	}
	return id, true
}
