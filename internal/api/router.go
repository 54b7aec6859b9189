package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mastercraft/payment-gateway/internal/handlers"
	"github.com/mastercraft/payment-gateway/internal/interfaces"
	"github.com/mastercraft/payment-gateway/internal/middleware"
	"github.com/mastercraft/payment-gateway/internal/telemetry"
)

func NewRouter(orchestrator interfaces.PaymentOrchestrator) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(telemetry.TracingMiddleware())
	r.Use(middleware.MetricsMiddleware())

	// Prometheus metrics
	r.GET("/metrics", middleware.PrometheusHandler())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "payment-gateway"})
	})

	// Payment routes
	paymentHandler := handlers.NewPaymentHandler(orchestrator)
	payments := r.Group("/api/v1/payments")
	{
		payments.POST("/initiate", paymentHandler.InitiatePayment)
		payments.GET("", paymentHandler.ListPayments)

		// Redirect landings must be registered before the dynamic routes.
		payments.GET("/success", paymentHandler.PaymentSuccess)
		payments.GET("/cancel", paymentHandler.PaymentCancel)

		payments.GET("/:payment_id", paymentHandler.GetPaymentStatus)
		payments.POST("/:payment_id/verify", paymentHandler.VerifyPayment)
	}

	return r
}
