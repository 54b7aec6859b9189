package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/mastercraft/payment-gateway/internal/models"
)

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) InitDB() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS payments (
			id VARCHAR(36) PRIMARY KEY,
			payment_id VARCHAR(100) UNIQUE NOT NULL,
			customer_name VARCHAR(255) NOT NULL,
			customer_email VARCHAR(255) NOT NULL,
			amount DECIMAL(10,2) NOT NULL,
			currency VARCHAR(3) NOT NULL DEFAULT 'USD',
			gateway_transaction_id VARCHAR(255),
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			description TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			completed_at TIMESTAMP,
			error_message TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_payment_id ON payments(payment_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_status ON payments(status)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_created_at ON payments(created_at)`,
	}

	for _, query := range queries {
		if _, err := r.db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (id, payment_id, customer_name, customer_email, amount, currency,
			gateway_transaction_id, status, description, created_at, updated_at, completed_at, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, payment.ID, payment.PaymentID, payment.CustomerName, payment.CustomerEmail,
		payment.Amount, payment.Currency,
		nullString(payment.GatewayTransactionID), payment.Status, nullString(payment.Description),
		payment.CreatedAt, payment.UpdatedAt, nullTime(payment.CompletedAt), nullString(payment.ErrorMessage))
	return err
}

func (r *PaymentRepository) GetByPaymentID(ctx context.Context, paymentID string) (*models.Payment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, payment_id, customer_name, customer_email, amount, currency,
			gateway_transaction_id, status, description, created_at, updated_at, completed_at, error_message
		FROM payments WHERE payment_id = $1
	`, paymentID)
	return scanPayment(row)
}

func (r *PaymentRepository) List(ctx context.Context) ([]*models.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, payment_id, customer_name, customer_email, amount, currency,
			gateway_transaction_id, status, description, created_at, updated_at, completed_at, error_message
		FROM payments
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

func (r *PaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	payment.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET gateway_transaction_id = $1, status = $2, completed_at = $3, error_message = $4, updated_at = $5
		WHERE payment_id = $6
	`, nullString(payment.GatewayTransactionID), payment.Status,
		nullTime(payment.CompletedAt), nullString(payment.ErrorMessage),
		payment.UpdatedAt, payment.PaymentID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	var payment models.Payment
	var gatewayTxnID, description, errorMessage sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(&payment.ID, &payment.PaymentID, &payment.CustomerName, &payment.CustomerEmail,
		&payment.Amount, &payment.Currency, &gatewayTxnID, &payment.Status, &description,
		&payment.CreatedAt, &payment.UpdatedAt, &completedAt, &errorMessage)
	if err != nil {
		return nil, err
	}

	payment.GatewayTransactionID = gatewayTxnID.String
	payment.Description = description.String
	payment.ErrorMessage = errorMessage.String
	if completedAt.Valid {
		t := completedAt.Time
		payment.CompletedAt = &t
	}
	return &payment, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
