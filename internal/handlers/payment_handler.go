package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mastercraft/payment-gateway/internal/gateway"
	"github.com/mastercraft/payment-gateway/internal/interfaces"
	"github.com/mastercraft/payment-gateway/internal/models"
	"github.com/mastercraft/payment-gateway/internal/service"
	"github.com/mastercraft/payment-gateway/internal/telemetry"
)

type PaymentHandler struct {
	orchestrator interfaces.PaymentOrchestrator
}

func NewPaymentHandler(orchestrator interfaces.PaymentOrchestrator) *PaymentHandler {
	return &PaymentHandler{orchestrator: orchestrator}
}

// InitiatePayment handles POST /api/v1/payments/initiate
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	var req models.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		telemetry.Logger.Warn("Invalid payment request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid request data",
			"error":   err.Error(),
		})
		return
	}

	result, err := h.orchestrator.Initiate(c.Request.Context(), req)
	if err != nil {
		var validationErr *models.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "Invalid request data",
				"errors":  validationErr.Fields,
			})
			return
		}

		// A non-nil result means the gateway call failed but the record was
		// persisted as failed and is auditable; the caller gets the
		// gateway's reason.
		if result != nil || isGatewayError(err) {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "Failed to initiate payment",
				"error":   err.Error(),
			})
			return
		}

		telemetry.Logger.Error("Unexpected error initiating payment", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Internal server error",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Payment initiated successfully",
		"payment": result.Payment.View(),
		"paypal_info": gin.H{
			"transaction_id": result.Gateway.TransactionID,
			"approval_url":   result.Gateway.ApprovalURL,
		},
	})
}

// GetPaymentStatus handles GET /api/v1/payments/:payment_id
func (h *PaymentHandler) GetPaymentStatus(c *gin.Context) {
	paymentID := c.Param("payment_id")

	payment, err := h.orchestrator.GetWithRefresh(c.Request.Context(), paymentID)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "error",
				"message": "Payment not found",
			})
			return
		}
		telemetry.Logger.Error("Failed to fetch payment",
			zap.String("payment_id", paymentID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Internal server error",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Payment details retrieved successfully",
		"payment": payment.StatusView(),
	})
}

// ListPayments handles GET /api/v1/payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	payments, err := h.orchestrator.List(c.Request.Context())
	if err != nil {
		telemetry.Logger.Error("Failed to list payments", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Internal server error",
			"error":   err.Error(),
		})
		return
	}

	items := make([]models.PaymentListItem, 0, len(payments))
	for _, p := range payments {
		items = append(items, p.ListItem())
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"message":  "Payments retrieved successfully",
		"payments": items,
		"count":    len(items),
	})
}

// VerifyPayment handles POST /api/v1/payments/:payment_id/verify
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	paymentID := c.Param("payment_id")

	payment, err := h.orchestrator.Verify(c.Request.Context(), paymentID)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "error",
				"message": "Payment not found",
			})
			return
		}
		// The record survives verification failures with its last known
		// state; the gateway's reason goes back to the caller.
		if payment != nil || errors.Is(err, service.ErrNoGatewayTransaction) || isGatewayError(err) {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "Payment verification failed",
				"error":   err.Error(),
			})
			return
		}
		telemetry.Logger.Error("Unexpected error verifying payment",
			zap.String("payment_id", paymentID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Internal server error",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Payment verified successfully",
		"payment": payment.StatusView(),
	})
}

// PaymentSuccess handles GET /api/v1/payments/success — the redirect
// landing after the customer approves the transaction at the gateway.
func (h *PaymentHandler) PaymentSuccess(c *gin.Context) {
	paymentID := c.Query("paymentId")
	if paymentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Payment verification failed",
		})
		return
	}

	payment, err := h.orchestrator.Verify(c.Request.Context(), paymentID)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "error",
				"message": "Payment not found",
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Payment verification failed",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"message":    "Payment completed successfully",
		"payment_id": payment.PaymentID,
		"amount":     payment.Amount.StringFixed(2),
		"currency":   payment.Currency,
	})
}

// PaymentCancel handles GET /api/v1/payments/cancel — the redirect landing
// after the customer backs out at the gateway. When a paymentId is passed
// the record is marked cancelled.
func (h *PaymentHandler) PaymentCancel(c *gin.Context) {
	if paymentID := c.Query("paymentId"); paymentID != "" {
		if _, err := h.orchestrator.Cancel(c.Request.Context(), paymentID); err != nil &&
			!errors.Is(err, service.ErrPaymentNotFound) {
			telemetry.Logger.Warn("Failed to mark payment cancelled",
				zap.String("payment_id", paymentID),
				zap.Error(err),
			)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "cancelled",
		"message": "Payment was cancelled by the user",
	})
}

func isGatewayError(err error) bool {
	var authErr *gateway.AuthError
	var reqErr *gateway.RequestError
	return errors.As(err, &authErr) || errors.As(err, &reqErr)
}
