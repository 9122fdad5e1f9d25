package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"skylens/internal/apperrors"
)

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}

// respondError maps an error to the HTTP status for its kind and writes the
// envelope. Unclassified errors are logged and reported generically so no
// internal state leaks to the caller.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "An unexpected error occurred"

	switch apperrors.KindOf(err) {
	case apperrors.KindInvalidInput:
		status = http.StatusBadRequest
		message = err.Error()
	case apperrors.KindNotFound:
		status = http.StatusNotFound
		message = err.Error()
	case apperrors.KindUpstreamNotFound, apperrors.KindUpstream, apperrors.KindUpstreamUnreachable:
		status = http.StatusBadGateway
		message = err.Error()
	default:
		log.Printf("Internal error on %s: %v", c.Request.URL.Path, err)
	}

	c.JSON(status, ErrorResponse{
		Timestamp: time.Now(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      c.Request.URL.Path,
	})
}
