package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/LavaJover/shvark-mypvit-relay/internal/config"
	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) config.MyPVIT {
	return config.MyPVIT{
		BaseURL:             baseURL,
		RenewBaseURL:        baseURL,
		CodeURL:             "CODEURL",
		PaymentCode:         "PAYCODE",
		CallbackURLCode:     "CB01",
		AgentName:           "NAT-VOYAGE",
		ServiceType:         "RESTFUL",
		TransactionType:     "PAYMENT",
		OwnerCharge:         "CUSTOMER",
		OperatorOwnerCharge: "MERCHANT",
		FreeInfo:            "Paiement NAT-VOYAGE",
		DefaultProduct:      "VOYAGE",
		ReferencePrefix:     "NAT",
		Timeout:             2 * time.Second,
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*MyPVITClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewMyPVITClient(testConfig(srv.URL), nil, nil)
	require.NoError(t, err)
	return c, srv
}

func TestRenewSecret_SendsFormAndCurrentSecret(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/CODEURL/renew-secret", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Equal(t, "old-secret", r.Header.Get("X-Secret"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "ACC_1", r.PostForm.Get("operationAccountCode"))
		assert.Equal(t, "CB01", r.PostForm.Get("receptionUrlCode"))
		assert.Equal(t, "pwd", r.PostForm.Get("password"))
		w.Write([]byte(`{"secret":"new-secret","expires_in":"3600"}`))
	})

	got, err := c.RenewSecret(context.Background(), domain.RenewSecretRequest{
		AccountCode:   "ACC_1",
		CallbackCode:  "CB01",
		Password:      "pwd",
		CurrentSecret: "old-secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "new-secret", got.Secret)
	assert.EqualValues(t, 3600, got.ExpiresIn)
}

func TestRenewSecret_MissingSecretIsRejected(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"ok"}`))
	})

	_, err := c.RenewSecret(context.Background(), domain.RenewSecretRequest{AccountCode: "ACC_1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGatewayRejected)
}

func TestInitiatePayment_Accepted(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/PAYCODE/rest", r.URL.Path)
		assert.Equal(t, "secret-1", r.Header.Get("X-Secret"))
		assert.Equal(t, "application/json", r.Header.Get("X-Callback-MediaType"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 5000, body["amount"])
		assert.Equal(t, "RES-1", body["product"])
		assert.Equal(t, "077123456", body["customer_account_number"])
		assert.Equal(t, "ACC_AIRTEL", body["merchant_operation_account_code"])
		assert.Equal(t, "AIRTEL_MONEY", body["operator_code"])
		assert.Equal(t, "CB01", body["callback_url_code"])
		ref, _ := body["reference"].(string)
		assert.True(t, strings.HasPrefix(ref, "NAT"))
		assert.LessOrEqual(t, len(ref), MaxReferenceLength)

		w.Write([]byte(`{"status":"PENDING","status_code":200,"reference_id":"TX-1","merchant_reference_id":"MR-1","operator":"AIRTEL_MONEY"}`))
	})

	got, err := c.InitiatePayment(context.Background(), domain.InitiatePaymentRequest{
		Amount:        5000,
		PhoneNumber:   "077123456",
		OperatorCode:  "AIRTEL_MONEY",
		AccountCode:   "ACC_AIRTEL",
		Secret:        "secret-1",
		ReservationID: "RES-1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, "TX-1", got.TransactionID)
	assert.Equal(t, "MR-1", got.MerchantReferenceID)
	assert.Equal(t, "AIRTEL_MONEY", got.Operator)
	assert.NotEmpty(t, got.Reference)
}

func TestInitiatePayment_KeepsCallerReference(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "MYREF", body["reference"])
		assert.Equal(t, "VOYAGE", body["product"])
		w.Write([]byte(`{"status_code":"200","status":"SUCCESS","reference_id":"TX-2"}`))
	})

	got, err := c.InitiatePayment(context.Background(), domain.InitiatePaymentRequest{Amount: 800, Reference: "MYREF"})
	require.NoError(t, err)
	assert.Equal(t, "MYREF", got.Reference)
	assert.Equal(t, "TX-2", got.TransactionID)
}

func TestInitiatePayment_FailedStatusIsError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"FAILED","message":"insufficient balance"}`))
	})

	_, err := c.InitiatePayment(context.Background(), domain.InitiatePaymentRequest{Amount: 800})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGatewayRejected)
	assert.Contains(t, err.Error(), "insufficient balance")
}

func TestInitiatePayment_HTTPErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		kind   error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message":"expired"}`, domain.ErrAuthenticationFailed},
		{"forbidden", http.StatusForbidden, `{"message":"inactive"}`, domain.ErrCallbackNotActivated},
		{"validation", http.StatusUnprocessableEntity, `{"messages":["amount too low","reference too long"]}`, domain.ErrValidationFailed},
		{"bad request", http.StatusBadRequest, `{}`, domain.ErrValidationFailed},
		{"server error", http.StatusBadGateway, `upstream down`, domain.ErrGatewayRejected},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			_, err := c.InitiatePayment(context.Background(), domain.InitiatePaymentRequest{Amount: 800})
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.kind)

			var gerr *domain.GatewayError
			require.True(t, errors.As(err, &gerr))
			assert.Equal(t, tc.status, gerr.StatusCode)
		})
	}
}

func TestInitiatePayment_ValidationMessagesSurface(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"messages":["amount too low","reference too long"]}`))
	})

	_, err := c.InitiatePayment(context.Background(), domain.InitiatePaymentRequest{Amount: 800})
	assert.Equal(t, []string{"amount too low", "reference too long"}, domain.FieldMessages(err))
}

func TestNetworkFailureIsUnavailable(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := c.QueryStatus(context.Background(), "TX-1", "secret")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGatewayUnavailable)
}

func TestTimeoutIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()
	cfg := testConfig(srv.URL)
	cfg.Timeout = 20 * time.Millisecond
	c, err := NewMyPVITClient(cfg, nil, nil)
	require.NoError(t, err)

	_, err = c.CheckBalance(context.Background(), "secret")
	assert.ErrorIs(t, err, domain.ErrGatewayUnavailable)
}

func TestQueryStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/CODEURL/status", r.URL.Path)
		assert.Equal(t, "TX-9", r.URL.Query().Get("reference_id"))
		w.Write([]byte(`{"status":"success","reference_id":"TX-9","amount":5000,"operator":"MOOV_MONEY","timestamp":"2026-01-02T10:00:00Z"}`))
	})

	got, err := c.QueryStatus(context.Background(), "TX-9", "secret")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, got.Status)
	assert.EqualValues(t, 5000, got.Amount)
	assert.Equal(t, "MOOV_MONEY", got.Operator)
	assert.Equal(t, "2026-01-02T10:00:00Z", got.Timestamp)
}

func TestCalculateFees(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/CODEURL/fees", r.URL.Path)
		assert.Equal(t, "5000", r.URL.Query().Get("amount"))
		w.Write([]byte(`{"fees":75,"total_amount":5075,"breakdown":{"operator":50,"platform":25}}`))
	})

	got, err := c.CalculateFees(context.Background(), 5000, "secret")
	require.NoError(t, err)
	assert.Equal(t, 75.0, got.Fees)
	assert.Equal(t, 5075.0, got.Total)
	assert.JSONEq(t, `{"operator":50,"platform":25}`, string(got.Breakdown))
}

type recordingObserver struct {
	ops   []string
	codes []int
}

func (o *recordingObserver) ObserveGatewayCall(op string, code int, _ time.Duration) {
	o.ops = append(o.ops, op)
	o.codes = append(o.codes, code)
}

func TestObserverSeesEveryCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"balance":1200,"currency":"XAF"}`))
	}))
	defer srv.Close()
	obs := &recordingObserver{}
	c, err := NewMyPVITClient(testConfig(srv.URL), nil, obs)
	require.NoError(t, err)

	bal, err := c.CheckBalance(context.Background(), "secret")
	require.NoError(t, err)
	assert.Equal(t, "XAF", bal.Currency)
	assert.Equal(t, []string{OpBalance}, obs.ops)
	assert.Equal(t, []int{http.StatusOK}, obs.codes)
}
