package models

import (
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() InitiatePaymentRequest {
	return InitiatePaymentRequest{
		CustomerName:  "John Doe",
		CustomerEmail: "john@example.com",
		Amount:        decimal.NewFromFloat(50.00),
		Currency:      "USD",
		Description:   "Test payment",
	}
}

func TestNewPayment(t *testing.T) {
	p := NewPayment(validRequest())

	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, "John Doe", p.CustomerName)
	assert.Equal(t, "john@example.com", p.CustomerEmail)
	assert.True(t, p.Amount.Equal(decimal.NewFromFloat(50.00)))
	assert.Equal(t, "USD", p.Currency)
	assert.Nil(t, p.CompletedAt)
	assert.Empty(t, p.GatewayTransactionID)

	require.NotEmpty(t, p.ID)
	assert.Regexp(t, regexp.MustCompile(`^PAY-[0-9A-F]{8}$`), p.PaymentID)
}

func TestNewPaymentDefaultsCurrency(t *testing.T) {
	req := validRequest()
	req.Currency = ""

	p := NewPayment(req)
	assert.Equal(t, "USD", p.Currency)
}

func TestNewPaymentLowercasesEmail(t *testing.T) {
	req := validRequest()
	req.CustomerEmail = "John@Example.COM"

	p := NewPayment(req)
	assert.Equal(t, "john@example.com", p.CustomerEmail)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*InitiatePaymentRequest)
		wantField string
	}{
		{"valid", func(r *InitiatePaymentRequest) {}, ""},
		{"zero amount", func(r *InitiatePaymentRequest) { r.Amount = decimal.Zero }, "amount"},
		{"negative amount", func(r *InitiatePaymentRequest) { r.Amount = decimal.NewFromFloat(-10) }, "amount"},
		{"email without at sign", func(r *InitiatePaymentRequest) { r.CustomerEmail = "invalid-email" }, "customer_email"},
		{"missing email", func(r *InitiatePaymentRequest) { r.CustomerEmail = "" }, "customer_email"},
		{"missing name", func(r *InitiatePaymentRequest) { r.CustomerName = "  " }, "customer_name"},
		{"bad currency", func(r *InitiatePaymentRequest) { r.Currency = "DOLLARS" }, "currency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := req.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Fields, tt.wantField)
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestStatusViewCarriesErrorAndTransaction(t *testing.T) {
	p := NewPayment(validRequest())
	p.GatewayTransactionID = "TXN123"
	p.ErrorMessage = "gateway said no"

	view := p.StatusView()
	assert.Equal(t, "TXN123", view.GatewayTransactionID)
	assert.Equal(t, "gateway said no", view.ErrorMessage)
	assert.Equal(t, p.PaymentID, view.PaymentID)
}
