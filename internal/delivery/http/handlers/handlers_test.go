package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LavaJover/shvark-mypvit-relay/internal/client/clienttest"
	"github.com/LavaJover/shvark-mypvit-relay/internal/config"
	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
	"github.com/LavaJover/shvark-mypvit-relay/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-mypvit-relay/internal/usecase/inventory"
	"github.com/LavaJover/shvark-mypvit-relay/internal/usecase/payment"
	"github.com/LavaJover/shvark-mypvit-relay/internal/usecase/routing"
	"github.com/LavaJover/shvark-mypvit-relay/internal/usecase/secret"
	"github.com/LavaJover/shvark-mypvit-relay/internal/usecase/webhook"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router  *gin.Engine
	store   *memory.Store
	gateway *clienttest.Gateway
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Env: "test",
		MyPVIT: config.MyPVIT{
			Mode:            config.ModeProduction,
			CallbackURLCode: "CB01",
			BootstrapSecret: "bootstrap",
			MinAmount:       500,
			MaxAmount:       10000000,
		},
		Accounts: []config.Account{{Code: "ACC_TEST", Password: "t"}, {Code: "ACC_AIRTEL", Password: "a"}},
		Routing: config.Routing{
			TestRoute: config.Route{Name: "test", Operator: "TEST_MONEY", Account: "ACC_TEST"},
			Routes:    []config.Route{{Name: "airtel", Prefix: "077", Operator: "AIRTEL_MONEY", Account: "ACC_AIRTEL"}},
		},
	}
	store := memory.NewStore()
	gw := &clienttest.Gateway{}
	secrets := secret.NewDefaultSecretUsecase(cfg, store, gw, nil)
	reconciler := webhook.NewDefaultWebhookUsecase(store, store, inventory.NewDefaultInventoryUsecase(store, nil), nil)
	payments := payment.NewDefaultPaymentUsecase(cfg, routing.NewRouterFromConfig(cfg), secrets, gw, store, reconciler, nil)

	router := NewRouter(RouterDeps{
		Environment: cfg.Env,
		Payments:    NewPaymentHandler(payments),
		Webhooks:    NewWebhookHandler(reconciler),
		Secrets:     NewSecretHandler(secrets, cfg.DefaultAccount()),
		Gatherer:    prometheus.NewRegistry(),
	})
	return &testServer{router: router, store: store, gateway: gw}
}

func (s *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func (s *testServer) seedBooking() {
	s.store.PutTrip(domain.Trip{ID: "V1", SeatsTakenEconomy: 5, SeatsTakenVIP: 1})
	s.store.PutSale(domain.Sale{ID: "S1", ReservationID: "R1", VoyageID: "V1", Classe: domain.FareClassEconomy})
	s.store.PutSale(domain.Sale{ID: "S2", ReservationID: "R1", VoyageID: "V1", Classe: domain.FareClassEconomy})
	s.store.PutSale(domain.Sale{ID: "S3", ReservationID: "R1", VoyageID: "V1", Classe: domain.FareClassVIP})
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w, body := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "test", body["environment"])
}

func TestInitiatePayment_BothPrefixes(t *testing.T) {
	for i, path := range []string{"/api/payment/initiate", "/payment/initiate"} {
		s := newTestServer(t)
		w, body := s.do(t, http.MethodPost, path,
			`{"reservationId":"R1","amount":"5000","phoneNumber":"077 12 34 56","reference":"REF`+string(rune('A'+i))+`"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "PENDING", body["status"])
		assert.EqualValues(t, 5000, body["amount"])
		assert.NotEmpty(t, body["transactionId"])
		assert.Equal(t, "AIRTEL_MONEY", body["operator"])
		assert.Equal(t, 1, s.store.TransactionCount())
	}
}

func TestInitiatePayment_ValidationIs400(t *testing.T) {
	s := newTestServer(t)
	w, body := s.do(t, http.MethodPost, "/api/payment/initiate", `{"reservationId":"R1","amount":100,"phoneNumber":"077123456"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["errors"])
	assert.Equal(t, 0, s.gateway.InitiateCount())
	assert.Equal(t, 0, s.store.TransactionCount())
}

func TestInitiatePayment_MalformedBody(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.do(t, http.MethodPost, "/api/payment/initiate", `{"amount":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInitiatePayment_GatewayErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"unavailable", &domain.GatewayError{Kind: domain.ErrGatewayUnavailable, Operation: "initiate_payment"}, http.StatusServiceUnavailable},
		{"rejected", &domain.GatewayError{Kind: domain.ErrGatewayRejected, Operation: "initiate_payment"}, http.StatusBadGateway},
		{"gateway validation", &domain.GatewayError{Kind: domain.ErrValidationFailed, StatusCode: 422, Messages: []string{"amount too low"}}, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t)
			s.gateway.InitiateFunc = func(domain.InitiatePaymentRequest) (*domain.InitiatedPayment, error) {
				return nil, tc.err
			}
			w, body := s.do(t, http.MethodPost, "/api/payment/initiate", `{"reservationId":"R1","amount":5000,"phoneNumber":"077123456"}`)
			assert.Equal(t, tc.code, w.Code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, 0, s.store.TransactionCount())
		})
	}
}

func TestSuccessScenario(t *testing.T) {
	s := newTestServer(t)
	s.seedBooking()

	w, body := s.do(t, http.MethodPost, "/api/payment/initiate", `{"reservationId":"R1","amount":5000,"phoneNumber":"077123456","reference":"REF1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	txID := body["transactionId"].(string)

	for i := 0; i < 2; i++ {
		w, body = s.do(t, http.MethodPost, "/payment/webhook", `{"transaction_id":"`+txID+`","status":"SUCCESS","amount":5000}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, body["success"])
	}

	tx, err := s.store.GetTransactionByTransactionID(context.Background(), txID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, tx.Status)
	assert.NotNil(t, tx.WebhookReceivedAt)
	for _, sale := range s.store.SalesByReservation("R1") {
		assert.Equal(t, domain.SaleStatusPaid, sale.Status)
	}
	trip, _ := s.store.Trip("V1")
	assert.EqualValues(t, 5, trip.SeatsTakenEconomy)
	assert.Len(t, s.store.WebhookDeliveries(), 2)
}

func TestFailedScenario(t *testing.T) {
	s := newTestServer(t)
	s.seedBooking()

	_, body := s.do(t, http.MethodPost, "/api/payment/initiate", `{"reservationId":"R1","amount":5000,"phoneNumber":"077123456","reference":"REF2"}`)
	txID := body["transactionId"].(string)

	for i := 0; i < 2; i++ {
		w, _ := s.do(t, http.MethodPost, "/api/payment/webhook", `{"transactionId":"`+txID+`","status":"FAILED"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	trip, _ := s.store.Trip("V1")
	assert.EqualValues(t, 3, trip.SeatsTakenEconomy)
	assert.EqualValues(t, 0, trip.SeatsTakenVIP)
	for _, sale := range s.store.SalesByReservation("R1") {
		assert.Equal(t, domain.SaleStatusCancelled, sale.Status)
	}
}

func TestWebhook_UnparsableAmountStillApplied(t *testing.T) {
	s := newTestServer(t)
	s.seedBooking()

	_, body := s.do(t, http.MethodPost, "/api/payment/initiate", `{"reservationId":"R1","amount":5000,"phoneNumber":"077123456","reference":"REF3"}`)
	txID := body["transactionId"].(string)

	w, _ := s.do(t, http.MethodPost, "/api/payment/webhook", `{"transactionId":"`+txID+`","amount":"N/A","status":"SUCCESS"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	tx, err := s.store.GetTransactionByTransactionID(context.Background(), txID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, tx.Status)
	for _, sale := range s.store.SalesByReservation("R1") {
		assert.Equal(t, domain.SaleStatusPaid, sale.Status)
	}
}

func TestInitiatePayment_FractionalAmountIs400(t *testing.T) {
	s := newTestServer(t)
	for _, amount := range []string{`500.9`, `1e30`} {
		w, body := s.do(t, http.MethodPost, "/api/payment/initiate", `{"reservationId":"R1","amount":`+amount+`,"phoneNumber":"077123456"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code, amount)
		assert.Equal(t, false, body["success"], amount)
	}
	assert.Equal(t, 0, s.gateway.InitiateCount())
	assert.Equal(t, 0, s.store.TransactionCount())
}

func TestWebhook_AlwaysAcknowledges(t *testing.T) {
	s := newTestServer(t)
	for _, body := range []string{`not json`, ``, `{"transactionId":"UNKNOWN","status":"SUCCESS"}`} {
		w, out := s.do(t, http.MethodPost, "/api/payment/webhook", body)
		assert.Equal(t, http.StatusOK, w.Code, body)
		assert.Equal(t, true, out["success"], body)
	}
	assert.Equal(t, 0, s.store.TransactionCount())
	assert.Len(t, s.store.WebhookDeliveries(), 3)
}

func TestPaymentStatus(t *testing.T) {
	s := newTestServer(t)
	s.gateway.StatusFunc = func(id, _ string) (*domain.PaymentStatus, error) {
		return &domain.PaymentStatus{TransactionID: id, Status: domain.StatusPending, Amount: 900}, nil
	}
	w, body := s.do(t, http.MethodGet, "/api/payment/status/TX-42", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "TX-42", body["transactionId"])
	assert.Equal(t, "PENDING", body["status"])
}

func TestFees(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodGet, "/api/payment/fees", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []any{"amount"}, body["errors"])

	w, _ = s.do(t, http.MethodGet, "/api/payment/fees?amount=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.gateway.FeesFunc = func(amount int64, _ string) (*domain.FeeQuote, error) {
		return &domain.FeeQuote{Amount: amount, Fees: 75, Total: 5075, Breakdown: json.RawMessage(`{"operator":75}`)}, nil
	}
	w, body = s.do(t, http.MethodGet, "/api/payment/fees?amount=5000", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 75, body["fees"])
	assert.EqualValues(t, 5075, body["totalAmount"])
}

func TestBalance(t *testing.T) {
	s := newTestServer(t)
	s.gateway.BalanceFunc = func(string) (*domain.Balance, error) {
		return &domain.Balance{Balance: 1200, Currency: "XAF"}, nil
	}
	w, body := s.do(t, http.MethodGet, "/payment/balance", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1200, body["balance"])
	assert.Equal(t, "XAF", body["currency"])
}

func TestRenewSecret(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodPost, "/api/payment/renew-secret", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 3600, body["expiresIn"])
	assert.NotEmpty(t, body["renewedAt"])
	assert.Equal(t, "ACC_TEST", body["accountCode"])

	w, body = s.do(t, http.MethodPost, "/api/payment/renew-secret", `{"accountCode":"ACC_AIRTEL"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ACC_AIRTEL", body["accountCode"])

	s.gateway.RenewFunc = func(domain.RenewSecretRequest) (*domain.RenewedSecret, error) {
		return nil, &domain.GatewayError{Kind: domain.ErrAuthenticationFailed, Operation: "renew_secret", StatusCode: 401}
	}
	w, _ = s.do(t, http.MethodPost, "/api/payment/renew-secret", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestReceiveToken(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodPost, "/payment/receive-token", `{"merchant_operation_account_code":"ACC_AIRTEL","secret_key":"pushed","expires_in":"7200"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 7200, body["expiresIn"])

	stored, err := s.store.GetSecret(context.Background(), "ACC_AIRTEL")
	require.NoError(t, err)
	assert.Equal(t, "pushed", stored.Value)

	w, body = s.do(t, http.MethodPost, "/payment/receive-token", `{"secret":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []any{"operationAccountCode", "expiresIn"}, body["errors"])
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusOf(domain.ErrNotFound))
	assert.Equal(t, http.StatusBadGateway, statusOf(&domain.GatewayError{Kind: domain.ErrCallbackNotActivated}))
	assert.Equal(t, http.StatusInternalServerError, statusOf(domain.ErrConfiguration))
	assert.Equal(t, http.StatusBadRequest, statusOf(domain.NewValidationError("amount")))
}
