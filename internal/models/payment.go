package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	StatusPending    PaymentStatus = "pending"
	StatusProcessing PaymentStatus = "processing"
	StatusCompleted  PaymentStatus = "completed"
	StatusFailed     PaymentStatus = "failed"
	StatusCancelled  PaymentStatus = "cancelled"
)

// Terminal reports whether no further gateway-driven transition is defined
// from the status.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

type Payment struct {
	ID                   string          `json:"id"`
	PaymentID            string          `json:"payment_id"`
	CustomerName         string          `json:"customer_name"`
	CustomerEmail        string          `json:"customer_email"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency"`
	GatewayTransactionID string          `json:"gateway_transaction_id,omitempty"`
	Status               PaymentStatus   `json:"status"`
	Description          string          `json:"description,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	CompletedAt          *time.Time      `json:"completed_at,omitempty"`
	ErrorMessage         string          `json:"error_message,omitempty"`
}

// NewPayment builds a pending payment with a fresh UUID and the derived
// external payment id. The payment id is assigned exactly once here and
// never recomputed.
func NewPayment(req InitiatePaymentRequest) *Payment {
	id := uuid.New().String()
	now := time.Now().UTC()

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	return &Payment{
		ID:            id,
		PaymentID:     "PAY-" + strings.ToUpper(id[:8]),
		CustomerName:  req.CustomerName,
		CustomerEmail: strings.ToLower(req.CustomerEmail),
		Amount:        req.Amount,
		Currency:      currency,
		Status:        StatusPending,
		Description:   req.Description,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

type InitiatePaymentRequest struct {
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Description   string          `json:"description"`
}

// Validate checks the request and returns a ValidationError carrying
// per-field messages, or nil if the request is acceptable.
func (r InitiatePaymentRequest) Validate() error {
	fields := map[string]string{}

	if strings.TrimSpace(r.CustomerName) == "" {
		fields["customer_name"] = "This field is required."
	}
	if r.CustomerEmail == "" || !strings.Contains(r.CustomerEmail, "@") {
		fields["customer_email"] = "Please provide a valid email address."
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		fields["amount"] = "Amount must be greater than zero."
	}
	if r.Currency != "" && len(r.Currency) != 3 {
		fields["currency"] = "Currency must be a 3-letter code."
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// GatewayTransaction is what the gateway hands back when it accepts a
// create-transaction call.
type GatewayTransaction struct {
	TransactionID string `json:"transaction_id"`
	ApprovalURL   string `json:"approval_url"`
}

// InitiateResult is the orchestrator's tagged success result for Initiate.
type InitiateResult struct {
	Payment *Payment
	Gateway *GatewayTransaction
}
