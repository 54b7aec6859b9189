package interfaces

import (
	"context"

	"github.com/mastercraft/payment-gateway/internal/models"
)

// PaymentRepository defines the contract for payment data access
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByPaymentID(ctx context.Context, paymentID string) (*models.Payment, error)
	List(ctx context.Context) ([]*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
}
