// README: Schedule trigger; the order API calls this after persisting a new
// order, handing its per-restaurant line items to the fulfillment core.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"catering/internal/modules/fulfillment"
	"catering/internal/modules/order"
)

// ItemsSource yields an order's line items grouped by restaurant leg.
// Satisfied by the order store.
type ItemsSource interface {
	ItemsByRestaurant(ctx context.Context, orderID int64) ([]order.RestaurantItems, error)
}

type ScheduleHandler struct {
	orders    ItemsSource
	scheduler *fulfillment.Scheduler
}

func NewScheduleHandler(orders ItemsSource, scheduler *fulfillment.Scheduler) *ScheduleHandler {
	return &ScheduleHandler{orders: orders, scheduler: scheduler}
}

func (h *ScheduleHandler) Schedule(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid order id")
		return
	}
	legs, err := h.orders.ItemsByRestaurant(c.Request.Context(), orderID)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	if len(legs) == 0 {
		writeError(c, http.StatusBadRequest, "order has no line items")
		return
	}
	if err := h.scheduler.Schedule(c.Request.Context(), orderID, legs); err != nil {
		if errors.Is(err, fulfillment.ErrUnsupportedRestaurant) {
			writeError(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusAccepted, map[string]any{"order_id": orderID, "legs": len(legs)})
}
