package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mastercraft/payment-gateway/internal/models"
	"github.com/mastercraft/payment-gateway/internal/telemetry"
)

func TestMain(m *testing.M) {
	telemetry.Logger = zap.NewNop()
	m.Run()
}

type fakeGatewayServer struct {
	tokenCalls  int
	tokenStatus int

	createStatus int
	createBody   string

	stateStatus int
	stateBody   string
}

func (f *fakeGatewayServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls++

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostFormValue("grant_type"))

		if f.tokenStatus != 0 && f.tokenStatus != http.StatusOK {
			w.WriteHeader(f.tokenStatus)
			w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test-token",
			"expires_in":   3600,
		})
	})

	mux.HandleFunc("/v1/payments/payment", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "sale", payload["intent"])

		status := f.createStatus
		if status == 0 {
			status = http.StatusCreated
		}
		w.WriteHeader(status)
		w.Write([]byte(f.createBody))
	})

	mux.HandleFunc("/v1/payments/payment/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		status := f.stateStatus
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		w.Write([]byte(f.stateBody))
	})

	return mux
}

func newTestClient(t *testing.T, f *fakeGatewayServer) (*PayPalClient, *httptest.Server) {
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	client := NewPayPalClient(Config{
		BaseURL:      srv.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		ReturnURL:    "http://localhost:8080/api/v1/payments/success",
		CancelURL:    "http://localhost:8080/api/v1/payments/cancel",
		Timeout:      5 * time.Second,
	})
	return client, srv
}

func TestCreateTransaction(t *testing.T) {
	f := &fakeGatewayServer{
		createBody: `{
			"id": "TXN123",
			"links": [
				{"href": "https://gw/self", "rel": "self"},
				{"href": "https://gw/approve", "rel": "approval_url"},
				{"href": "https://gw/execute", "rel": "execute"}
			]
		}`,
	}
	client, _ := newTestClient(t, f)

	txn, err := client.CreateTransaction(context.Background(), decimal.NewFromFloat(50.00), "USD", "Test payment")
	require.NoError(t, err)
	assert.Equal(t, "TXN123", txn.TransactionID)
	assert.Equal(t, "https://gw/approve", txn.ApprovalURL)
}

func TestCreateTransactionFailureCarriesBody(t *testing.T) {
	f := &fakeGatewayServer{
		createStatus: http.StatusBadRequest,
		createBody:   `{"name":"VALIDATION_ERROR"}`,
	}
	client, _ := newTestClient(t, f)

	_, err := client.CreateTransaction(context.Background(), decimal.NewFromFloat(50.00), "USD", "")
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusBadRequest, reqErr.StatusCode)
	assert.Contains(t, reqErr.Body, "VALIDATION_ERROR")
}

func TestCreateTransactionMissingApprovalLink(t *testing.T) {
	f := &fakeGatewayServer{
		createBody: `{"id": "TXN123", "links": [{"href": "https://gw/self", "rel": "self"}]}`,
	}
	client, _ := newTestClient(t, f)

	_, err := client.CreateTransaction(context.Background(), decimal.NewFromFloat(50.00), "USD", "")
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Contains(t, reqErr.Body, "approval_url")
}

func TestTokenIsCachedAcrossCalls(t *testing.T) {
	f := &fakeGatewayServer{
		createBody: `{"id": "TXN123", "links": [{"href": "https://gw/approve", "rel": "approval_url"}]}`,
		stateBody:  `{"id": "TXN123", "state": "approved"}`,
	}
	client, _ := newTestClient(t, f)

	_, err := client.CreateTransaction(context.Background(), decimal.NewFromFloat(50.00), "USD", "")
	require.NoError(t, err)
	_, err = client.VerifyTransaction(context.Background(), "TXN123")
	require.NoError(t, err)

	assert.Equal(t, 1, f.tokenCalls)
}

func TestAcquireTokenFailure(t *testing.T) {
	f := &fakeGatewayServer{tokenStatus: http.StatusUnauthorized}
	client, _ := newTestClient(t, f)

	_, err := client.CreateTransaction(context.Background(), decimal.NewFromFloat(50.00), "USD", "")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
}

func TestVerifyTransactionStateMapping(t *testing.T) {
	tests := []struct {
		state string
		want  models.PaymentStatus
	}{
		{"approved", models.StatusCompleted},
		{"created", models.StatusFailed},
		{"expired", models.StatusFailed},
		{"unknown", models.StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			f := &fakeGatewayServer{
				stateBody: `{"id": "TXN123", "state": "` + tt.state + `"}`,
			}
			client, _ := newTestClient(t, f)

			status, err := client.VerifyTransaction(context.Background(), "TXN123")
			require.NoError(t, err)
			assert.Equal(t, tt.want, status)
		})
	}
}

func TestVerifyTransactionHTTPFailure(t *testing.T) {
	f := &fakeGatewayServer{
		stateStatus: http.StatusNotFound,
		stateBody:   `{"name":"INVALID_RESOURCE_ID"}`,
	}
	client, _ := newTestClient(t, f)

	_, err := client.VerifyTransaction(context.Background(), "TXN404")
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
	assert.Contains(t, reqErr.Body, "INVALID_RESOURCE_ID")
}
