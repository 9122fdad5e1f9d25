package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"skylens/internal/models"
)

// AdminHandler exposes operational stats
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// AdminAuth middleware for basic password protection
func (h *AdminHandler) AdminAuth() gin.HandlerFunc {
	return gin.BasicAuth(gin.Accounts{
		"admin": getAdminPassword(),
	})
}

// getAdminPassword returns the admin password from environment or default
func getAdminPassword() string {
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123" // Default password for development
	}
	return password
}

// Stats handles GET /admin/api/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	var activeDetections, inactiveDetections int64
	h.db.Model(&models.Detection{}).Where("status = ?", models.StatusActive).Count(&activeDetections)
	h.db.Model(&models.Detection{}).Where("status = ?", models.StatusInactive).Count(&inactiveDetections)

	var activeRecords, inactiveRecords int64
	h.db.Model(&models.AlmanacRecord{}).Where("status = ?", models.StatusActive).Count(&activeRecords)
	h.db.Model(&models.AlmanacRecord{}).Where("status = ?", models.StatusInactive).Count(&inactiveRecords)

	var latest models.AlmanacRecord
	latestDate := ""
	if err := h.db.Where("status = ?", models.StatusActive).
		Order("apod_date DESC").
		First(&latest).Error; err == nil {
		latestDate = latest.ApodDate
	}

	c.JSON(http.StatusOK, gin.H{
		"detections": gin.H{
			"active":   activeDetections,
			"inactive": inactiveDetections,
		},
		"apod_records": gin.H{
			"active":   activeRecords,
			"inactive": inactiveRecords,
		},
		"latest_apod_date": latestDate,
	})
}
