// README: Inbound provider webhooks. The route's fixed path segment is the
// shared secret; a mismatch is indistinguishable from an unknown route.
package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"catering/internal/modules/fulfillment"
)

type WebhookHandler struct {
	webhooks    *fulfillment.WebhookService
	kfcSecret   string
	uklonSecret string
}

func NewWebhookHandler(webhooks *fulfillment.WebhookService, kfcSecret, uklonSecret string) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks, kfcSecret: kfcSecret, uklonSecret: uklonSecret}
}

type deliveryWebhookReq struct {
	ID       string      `json:"id"`
	Status   string      `json:"status"`
	Location *[2]float64 `json:"location"`
}

func (h *WebhookHandler) Uklon(c *gin.Context) {
	if !secretMatch(c.Param("secret"), h.uklonSecret) {
		c.Status(http.StatusNotFound)
		return
	}
	var req deliveryWebhookReq
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" || req.Status == "" {
		writeError(c, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.webhooks.ApplyDeliveryUpdate(c.Request.Context(), "uklon", req.ID, req.Status, req.Location); err != nil {
		writeTrackingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"status": "ok"})
}

type kitchenWebhookReq struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (h *WebhookHandler) Kfc(c *gin.Context) {
	if !secretMatch(c.Param("secret"), h.kfcSecret) {
		c.Status(http.StatusNotFound)
		return
	}
	var req kitchenWebhookReq
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" || req.Status == "" {
		writeError(c, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.webhooks.ApplyKitchenUpdate(c.Request.Context(), "kfc", req.ID, req.Status); err != nil {
		writeTrackingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"status": "ok"})
}

func secretMatch(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
