package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/mastercraft/payment-gateway/internal/interfaces"
	"github.com/mastercraft/payment-gateway/internal/middleware"
	"github.com/mastercraft/payment-gateway/internal/models"
	"github.com/mastercraft/payment-gateway/internal/telemetry"
)

var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrNoGatewayTransaction = errors.New("payment has no gateway transaction id")
)

// PaymentService coordinates payment records with gateway calls. Redis and
// Kafka are optional collaborators: without Redis every status read of a
// non-terminal payment re-verifies against the gateway, and without Kafka
// no lifecycle events are published.
type PaymentService struct {
	repo            interfaces.PaymentRepository
	gateway         interfaces.GatewayClient
	redisClient     *redis.Client
	kafkaWriter     *kafka.Writer
	refreshInterval time.Duration
}

func NewPaymentService(repo interfaces.PaymentRepository, gw interfaces.GatewayClient, redisClient *redis.Client, kafkaWriter *kafka.Writer, refreshInterval time.Duration) *PaymentService {
	return &PaymentService{
		repo:            repo,
		gateway:         gw,
		redisClient:     redisClient,
		kafkaWriter:     kafkaWriter,
		refreshInterval: refreshInterval,
	}
}

// Initiate validates the request, persists a pending payment, then asks the
// gateway to create a transaction. A failed gateway call is absorbed into
// the record: the payment is marked failed and kept, and the gateway error
// is returned alongside it.
func (s *PaymentService) Initiate(ctx context.Context, req models.InitiatePaymentRequest) (*models.InitiateResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	payment := models.NewPayment(req)

	telemetry.Logger.Info("Creating payment",
		zap.String("payment_id", payment.PaymentID),
		zap.String("customer_email", payment.CustomerEmail),
		zap.String("amount", payment.Amount.String()),
	)

	if err := s.repo.Create(ctx, payment); err != nil {
		telemetry.Logger.Error("Failed to save payment to database",
			zap.String("payment_id", payment.PaymentID),
			zap.Error(err),
		)
		return nil, err
	}

	txn, err := s.gateway.CreateTransaction(ctx, payment.Amount, payment.Currency, payment.Description)
	if err != nil {
		telemetry.Logger.Warn("Gateway transaction creation failed",
			zap.String("payment_id", payment.PaymentID),
			zap.Error(err),
		)
		s.transition(ctx, payment, models.StatusFailed)
		payment.ErrorMessage = err.Error()
		if updateErr := s.repo.Update(ctx, payment); updateErr != nil {
			telemetry.Logger.Error("Failed to persist failed payment",
				zap.String("payment_id", payment.PaymentID),
				zap.Error(updateErr),
			)
		}
		return &models.InitiateResult{Payment: payment}, err
	}

	payment.GatewayTransactionID = txn.TransactionID
	s.transition(ctx, payment, models.StatusProcessing)
	if err := s.repo.Update(ctx, payment); err != nil {
		telemetry.Logger.Error("Failed to persist processing payment",
			zap.String("payment_id", payment.PaymentID),
			zap.Error(err),
		)
		return nil, err
	}

	telemetry.Logger.Info("Payment initiated successfully",
		zap.String("payment_id", payment.PaymentID),
		zap.String("transaction_id", txn.TransactionID),
	)

	return &models.InitiateResult{Payment: payment, Gateway: txn}, nil
}

// Verify re-checks a payment against the gateway and applies the outcome.
// Terminal payments are returned unchanged without a gateway call.
func (s *PaymentService) Verify(ctx context.Context, paymentID string) (*models.Payment, error) {
	payment, err := s.repo.GetByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if payment.Status.Terminal() {
		return payment, nil
	}

	if payment.GatewayTransactionID == "" {
		return payment, ErrNoGatewayTransaction
	}

	status, err := s.gateway.VerifyTransaction(ctx, payment.GatewayTransactionID)
	if err != nil {
		telemetry.Logger.Warn("Gateway verification failed",
			zap.String("payment_id", payment.PaymentID),
			zap.Error(err),
		)
		return payment, err
	}

	s.transition(ctx, payment, status)
	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, err
	}

	telemetry.Logger.Info("Payment verified",
		zap.String("payment_id", payment.PaymentID),
		zap.String("status", string(payment.Status)),
	)

	return payment, nil
}

// GetWithRefresh returns the payment, first re-verifying it when it is
// still pending or processing. Refreshes are throttled through Redis so
// repeated polling does not hammer the gateway; a failed refresh falls back
// to the stored record.
func (s *PaymentService) GetWithRefresh(ctx context.Context, paymentID string) (*models.Payment, error) {
	payment, err := s.repo.GetByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if payment.Status != models.StatusPending && payment.Status != models.StatusProcessing {
		return payment, nil
	}

	if !s.acquireRefreshSlot(ctx, paymentID) {
		return payment, nil
	}

	refreshed, err := s.Verify(ctx, paymentID)
	if err != nil {
		// Last known state wins when the gateway is unreachable.
		return payment, nil
	}
	return refreshed, nil
}

func (s *PaymentService) List(ctx context.Context) ([]*models.Payment, error) {
	return s.repo.List(ctx)
}

// Cancel marks a non-terminal payment as cancelled by explicit user action.
// Terminal payments are left untouched.
func (s *PaymentService) Cancel(ctx context.Context, paymentID string) (*models.Payment, error) {
	payment, err := s.repo.GetByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if payment.Status.Terminal() {
		return payment, nil
	}

	s.transition(ctx, payment, models.StatusCancelled)
	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, err
	}

	telemetry.Logger.Info("Payment cancelled by user",
		zap.String("payment_id", payment.PaymentID),
	)

	return payment, nil
}

// transition applies a status change in memory, stamps completed_at on
// completion, publishes the state-change event, and bumps the counter.
// Persistence is the caller's responsibility.
func (s *PaymentService) transition(ctx context.Context, payment *models.Payment, to models.PaymentStatus) {
	from := payment.Status
	payment.Status = to
	if to == models.StatusCompleted && payment.CompletedAt == nil {
		now := time.Now().UTC()
		payment.CompletedAt = &now
	}

	middleware.RecordPaymentProcessed(string(to))
	s.publishStateChange(ctx, payment, from)
}

func (s *PaymentService) publishStateChange(ctx context.Context, payment *models.Payment, from models.PaymentStatus) {
	if s.kafkaWriter == nil {
		return
	}

	event := map[string]interface{}{
		"payment_id":      payment.PaymentID,
		"status":          payment.Status,
		"previous_status": from,
		"amount":          payment.Amount.String(),
		"currency":        payment.Currency,
		"timestamp":       time.Now().UTC(),
	}
	eventJSON, _ := json.Marshal(event)

	if err := s.kafkaWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(payment.PaymentID),
		Value: eventJSON,
	}); err != nil {
		telemetry.Logger.Error("Failed to publish payment state event",
			zap.String("payment_id", payment.PaymentID),
			zap.Error(err),
		)
	}
}

// acquireRefreshSlot rate-limits auto-refresh per payment. Without Redis it
// always grants the slot, matching the unthrottled reference behavior.
func (s *PaymentService) acquireRefreshSlot(ctx context.Context, paymentID string) bool {
	if s.redisClient == nil {
		return true
	}

	key := fmt.Sprintf("payment:refresh:%s", paymentID)
	ok, err := s.redisClient.SetNX(ctx, key, "1", s.refreshInterval).Result()
	if err != nil {
		// Redis being down should not block status reads.
		return true
	}
	return ok
}
