package interfaces

import (
	"context"

	"github.com/mastercraft/payment-gateway/internal/models"
)

// PaymentOrchestrator defines the contract the HTTP handlers depend on
type PaymentOrchestrator interface {
	Initiate(ctx context.Context, req models.InitiatePaymentRequest) (*models.InitiateResult, error)
	Verify(ctx context.Context, paymentID string) (*models.Payment, error)
	GetWithRefresh(ctx context.Context, paymentID string) (*models.Payment, error)
	List(ctx context.Context) ([]*models.Payment, error)
	Cancel(ctx context.Context, paymentID string) (*models.Payment, error)
}
