// README: HTTP route table. Webhook paths embed the provider secret as a path
// parameter, mirroring the fixed unguessable URLs providers were given.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"catering/internal/http/handlers"
	"catering/internal/http/middleware"
	"catering/internal/modules/fulfillment"
	"catering/internal/modules/tracking"
)

type RouterDeps struct {
	Webhooks    *fulfillment.WebhookService
	Ledger      *tracking.Ledger
	Orders      handlers.ItemsSource
	Scheduler   *fulfillment.Scheduler
	KfcSecret   string
	UklonSecret string
	Log         *slog.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logging(deps.Log))

	webhookHandler := handlers.NewWebhookHandler(deps.Webhooks, deps.KfcSecret, deps.UklonSecret)
	trackingHandler := handlers.NewTrackingHandler(deps.Ledger)
	scheduleHandler := handlers.NewScheduleHandler(deps.Orders, deps.Scheduler)

	r.POST("/webhook/kfc/:secret/", webhookHandler.Kfc)
	r.POST("/webhook/uklon/:secret/", webhookHandler.Uklon)
	r.GET("/food/orders/:id/tracking", trackingHandler.Get)
	r.POST("/food/orders/:id/schedule", scheduleHandler.Schedule)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}
