// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"catering/internal/modules/status"
	"catering/internal/modules/tracking"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, code int, v any) {
	c.JSON(code, v)
}

func writeError(c *gin.Context, code int, msg string) {
	writeJSON(c, code, errorResponse{Error: msg})
}

func writeTrackingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tracking.ErrUnknownExternalOrder),
		errors.Is(err, tracking.ErrMissingTrackingRecord):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, status.ErrUnmappedStatus):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
