// README: Live tracking read endpoint backed by the ledger.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"catering/internal/modules/tracking"
)

type TrackingHandler struct {
	ledger *tracking.Ledger
}

func NewTrackingHandler(ledger *tracking.Ledger) *TrackingHandler {
	return &TrackingHandler{ledger: ledger}
}

func (h *TrackingHandler) Get(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid order id")
		return
	}
	rec, err := h.ledger.Get(c.Request.Context(), orderID)
	if err != nil {
		writeTrackingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, rec)
}
