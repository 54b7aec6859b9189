package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// The API exposes three shapes of a payment depending on the endpoint.

// PaymentView is returned from initiate.
type PaymentView struct {
	ID            string          `json:"id"`
	PaymentID     string          `json:"payment_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        PaymentStatus   `json:"status"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	CompletedAt   *time.Time      `json:"completed_at"`
}

// PaymentStatusView is returned from status lookup and verify.
type PaymentStatusView struct {
	ID                   string          `json:"id"`
	PaymentID            string          `json:"payment_id"`
	CustomerName         string          `json:"customer_name"`
	CustomerEmail        string          `json:"customer_email"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency"`
	Status               PaymentStatus   `json:"status"`
	GatewayTransactionID string          `json:"gateway_transaction_id"`
	CreatedAt            time.Time       `json:"created_at"`
	CompletedAt          *time.Time      `json:"completed_at"`
	ErrorMessage         string          `json:"error_message"`
}

// PaymentListItem is the compact shape used by the list endpoint.
type PaymentListItem struct {
	ID            string          `json:"id"`
	PaymentID     string          `json:"payment_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        PaymentStatus   `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (p *Payment) View() PaymentView {
	return PaymentView{
		ID:            p.ID,
		PaymentID:     p.PaymentID,
		CustomerName:  p.CustomerName,
		CustomerEmail: p.CustomerEmail,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Status:        p.Status,
		Description:   p.Description,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		CompletedAt:   p.CompletedAt,
	}
}

func (p *Payment) StatusView() PaymentStatusView {
	return PaymentStatusView{
		ID:                   p.ID,
		PaymentID:            p.PaymentID,
		CustomerName:         p.CustomerName,
		CustomerEmail:        p.CustomerEmail,
		Amount:               p.Amount,
		Currency:             p.Currency,
		Status:               p.Status,
		GatewayTransactionID: p.GatewayTransactionID,
		CreatedAt:            p.CreatedAt,
		CompletedAt:          p.CompletedAt,
		ErrorMessage:         p.ErrorMessage,
	}
}

func (p *Payment) ListItem() PaymentListItem {
	return PaymentListItem{
		ID:            p.ID,
		PaymentID:     p.PaymentID,
		CustomerName:  p.CustomerName,
		CustomerEmail: p.CustomerEmail,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Status:        p.Status,
		CreatedAt:     p.CreatedAt,
	}
}
