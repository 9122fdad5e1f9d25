package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"skylens/internal/apperrors"
	"skylens/internal/services"
)

// AlmanacHandler handles HTTP requests for APOD records
type AlmanacHandler struct {
	service *services.AlmanacService
}

// NewAlmanacHandler creates a new almanac handler
func NewAlmanacHandler(db *gorm.DB, client services.AlmanacAPI) *AlmanacHandler {
	return &AlmanacHandler{
		service: services.NewAlmanacService(db, client),
	}
}

// AlmanacRequest carries the optional date for create and update.
type AlmanacRequest struct {
	Date string `json:"date,omitempty"` // YYYY-MM-DD, empty means today
}

// Create handles POST /api/v1/nasa-apod
func (h *AlmanacHandler) Create(c *gin.Context) {
	var req AlmanacRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Wrap(apperrors.KindInvalidInput, "invalid request body", err))
		return
	}

	record, err := h.service.Create(c.Request.Context(), req.Date)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// List handles GET /api/v1/nasa-apod
func (h *AlmanacHandler) List(c *gin.Context) {
	records, err := h.service.FindAll()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// Get handles GET /api/v1/nasa-apod/:id
func (h *AlmanacHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	record, err := h.service.FindByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// Update handles PUT /api/v1/nasa-apod/:id
func (h *AlmanacHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req AlmanacRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Wrap(apperrors.KindInvalidInput, "invalid request body", err))
		return
	}

	record, err := h.service.Update(c.Request.Context(), id, req.Date)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// Delete handles DELETE /api/v1/nasa-apod/:id
func (h *AlmanacHandler) Delete(c *gin.Context) {
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

// Restore handles PATCH /api/v1/nasa-apod/:id/restore
func (h *AlmanacHandler) Restore(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	record, err := h.service.Restore(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// FetchToday handles GET /api/v1/nasa-apod/fetch/today
func (h *AlmanacHandler) FetchToday(c *gin.Context) {
	record, err := h.service.FetchToday(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// FetchByDate handles GET /api/v1/nasa-apod/fetch/date/:date
func (h *AlmanacHandler) FetchByDate(c *gin.Context) {
	record, err := h.service.FetchByDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}
