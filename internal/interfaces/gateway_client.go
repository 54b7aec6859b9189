package interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mastercraft/payment-gateway/internal/models"
)

// GatewayClient defines the contract for the external payment gateway
type GatewayClient interface {
	// CreateTransaction submits a sale-intent transaction and returns the
	// gateway transaction id plus the approval URL the customer is sent to.
	CreateTransaction(ctx context.Context, amount decimal.Decimal, currency, description string) (*models.GatewayTransaction, error)
	// VerifyTransaction fetches the gateway-side state of a transaction and
	// maps it onto a local payment status.
	VerifyTransaction(ctx context.Context, transactionID string) (models.PaymentStatus, error)
}
