package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mastercraft/payment-gateway/internal/middleware"
	"github.com/mastercraft/payment-gateway/internal/models"
	"github.com/mastercraft/payment-gateway/internal/telemetry"
)

// tokenExpirySlack refreshes the cached token slightly before the gateway
// would reject it.
const tokenExpirySlack = 60 * time.Second

type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	ReturnURL    string
	CancelURL    string
	Timeout      time.Duration
}

// PayPalClient talks to the PayPal v1 REST API. The access token is cached
// per client instance and refreshed when it expires.
type PayPalClient struct {
	cfg        Config
	httpClient *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewPayPalClient(cfg Config) *PayPalClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &PayPalClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// acquireToken performs the client-credentials exchange, reusing the cached
// token while it is still valid.
func (c *PayPalClient) acquireToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		middleware.RecordGatewayRequest("token", "error")
		return "", &AuthError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	c.token = token.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - tokenExpirySlack)
	middleware.RecordGatewayRequest("token", "success")

	return c.token, nil
}

type createPaymentRequest struct {
	Intent       string        `json:"intent"`
	Payer        payer         `json:"payer"`
	Transactions []transaction `json:"transactions"`
	RedirectURLs redirectURLs  `json:"redirect_urls"`
}

type payer struct {
	PaymentMethod string `json:"payment_method"`
}

type transaction struct {
	Amount      txnAmount `json:"amount"`
	Description string    `json:"description"`
}

type txnAmount struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type redirectURLs struct {
	ReturnURL string `json:"return_url"`
	CancelURL string `json:"cancel_url"`
}

type createPaymentResponse struct {
	ID    string `json:"id"`
	Links []link `json:"links"`
}

type link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

func (c *PayPalClient) CreateTransaction(ctx context.Context, amount decimal.Decimal, currency, description string) (*models.GatewayTransaction, error) {
	token, err := c.acquireToken(ctx)
	if err != nil {
		return nil, err
	}

	if description == "" {
		description = "Payment for services"
	}

	payload := createPaymentRequest{
		Intent: "sale",
		Payer:  payer{PaymentMethod: "paypal"},
		Transactions: []transaction{{
			Amount:      txnAmount{Total: amount.StringFixed(2), Currency: currency},
			Description: description,
		}},
		RedirectURLs: redirectURLs{
			ReturnURL: c.cfg.ReturnURL,
			CancelURL: c.cfg.CancelURL,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/v1/payments/payment", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		middleware.RecordGatewayRequest("create", "error")
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		middleware.RecordGatewayRequest("create", "error")
		return nil, &RequestError{Operation: "payment creation", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var created createPaymentResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		return nil, fmt.Errorf("failed to decode create payment response: %w", err)
	}

	approvalURL := ""
	for _, l := range created.Links {
		if l.Rel == "approval_url" {
			approvalURL = l.Href
			break
		}
	}
	if approvalURL == "" {
		middleware.RecordGatewayRequest("create", "error")
		return nil, &RequestError{Operation: "payment creation", StatusCode: resp.StatusCode, Body: "no approval_url link in gateway response"}
	}

	middleware.RecordGatewayRequest("create", "success")
	telemetry.Logger.Info("Gateway transaction created",
		zap.String("transaction_id", created.ID),
	)

	return &models.GatewayTransaction{
		TransactionID: created.ID,
		ApprovalURL:   approvalURL,
	}, nil
}

type paymentStateResponse struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

// VerifyTransaction fetches the gateway-side payment and maps its state:
// "approved" becomes completed, anything else failed.
func (c *PayPalClient) VerifyTransaction(ctx context.Context, transactionID string) (models.PaymentStatus, error) {
	token, err := c.acquireToken(ctx)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+"/v1/payments/payment/"+transactionID, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		middleware.RecordGatewayRequest("verify", "error")
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		middleware.RecordGatewayRequest("verify", "error")
		return "", &RequestError{Operation: "payment verification", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var state paymentStateResponse
	if err := json.Unmarshal(respBody, &state); err != nil {
		return "", fmt.Errorf("failed to decode payment state response: %w", err)
	}

	middleware.RecordGatewayRequest("verify", "success")

	if state.State == "approved" {
		return models.StatusCompleted, nil
	}
	return models.StatusFailed, nil
}
