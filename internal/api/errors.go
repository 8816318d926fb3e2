package api

import (
	"net/http"

	"nightlife-sync/pkg/apperr"
	"nightlife-sync/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeError maps service errors onto status codes. Internal errors are
// logged and reported without detail.
func writeError(c *gin.Context, log *logger.Logger, err error) {
	switch {
	case apperr.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Field: apperr.FieldOf(err)})
	case apperr.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	default:
		log.Error("Request failed", "error", err, "path", c.FullPath(), "correlation_id", c.GetString("correlation_id"))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
