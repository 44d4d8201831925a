package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/LavaJover/shvark-mypvit-relay/internal/delivery/http/dto/payment/response"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	Environment string
	Payments    *PaymentHandler
	Webhooks    *WebhookHandler
	Secrets     *SecretHandler
	Gatherer    prometheus.Gatherer
}

// NewRouter mounts the payment routes under /api/payment and, for callers
// configured against the older layout, under /payment.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, response.HealthResponse{
			Success:     true,
			Message:     "payment relay is running",
			Environment: deps.Environment,
			Timestamp:   time.Now().UTC(),
		})
	})
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	for _, prefix := range []string{"/api/payment", "/payment"} {
		g := router.Group(prefix)
		{
			g.POST("/initiate", deps.Payments.InitiatePayment)
			g.GET("/status/:transactionId", deps.Payments.GetPaymentStatus)
			g.GET("/fees", deps.Payments.CalculateFees)
			g.GET("/balance", deps.Payments.CheckBalance)
			g.POST("/webhook", deps.Webhooks.HandleWebhook)
			g.POST("/renew-secret", deps.Secrets.RenewSecret)
			g.POST("/receive-token", deps.Secrets.ReceiveToken)
		}
	}
	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
