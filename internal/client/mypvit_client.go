package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/LavaJover/shvark-mypvit-relay/internal/config"
	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
)

const (
	OpRenewSecret = "renew_secret"
	OpInitiate    = "initiate_payment"
	OpStatus      = "query_status"
	OpFees        = "calculate_fees"
	OpBalance     = "check_balance"

	maxResponseBytes = 1 << 20
)

// CallObserver is notified of every gateway round trip. statusCode is 0
// when no HTTP response was received.
type CallObserver interface {
	ObserveGatewayCall(operation string, statusCode int, d time.Duration)
}

// MyPVITClient performs the gateway HTTP calls. It holds no secret: callers
// pass the current one on every call.
type MyPVITClient struct {
	cfg        config.MyPVIT
	httpClient *http.Client
	references *ReferenceGenerator
	observer   CallObserver
}

func NewMyPVITClient(cfg config.MyPVIT, httpClient *http.Client, observer CallObserver) (*MyPVITClient, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	refs, err := NewReferenceGenerator(cfg.ReferencePrefix)
	if err != nil {
		return nil, err
	}
	return &MyPVITClient{
		cfg:        cfg,
		httpClient: httpClient,
		references: refs,
		observer:   observer,
	}, nil
}

func (c *MyPVITClient) GenerateReference() string {
	return c.references.Generate()
}

func (c *MyPVITClient) RenewSecret(ctx context.Context, req domain.RenewSecretRequest) (*domain.RenewedSecret, error) {
	code := c.cfg.RenewCode
	if code == "" {
		code = c.cfg.CodeURL
	}
	endpoint := fmt.Sprintf("%s/%s/renew-secret", strings.TrimRight(c.cfg.RenewBaseURL, "/"), code)

	form := url.Values{}
	form.Set("operationAccountCode", req.AccountCode)
	form.Set("receptionUrlCode", req.CallbackCode)
	form.Set("password", req.Password)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Secret", req.CurrentSecret)

	var resp renewSecretResponse
	if err := c.do(httpReq, OpRenewSecret, &resp); err != nil {
		return nil, err
	}
	if resp.Secret == "" || resp.ExpiresIn <= 0 {
		return nil, &domain.GatewayError{
			Kind:      domain.ErrGatewayRejected,
			Operation: OpRenewSecret,
			Message:   "response carries no secret or expiry",
		}
	}

	return &domain.RenewedSecret{Secret: resp.Secret, ExpiresIn: int64(resp.ExpiresIn)}, nil
}

func (c *MyPVITClient) InitiatePayment(ctx context.Context, req domain.InitiatePaymentRequest) (*domain.InitiatedPayment, error) {
	reference := req.Reference
	if reference == "" {
		reference = c.GenerateReference()
	}
	product := req.ReservationID
	if product == "" {
		product = c.cfg.DefaultProduct
	}

	body, err := json.Marshal(initiatePaymentRequest{
		Agent:                        c.cfg.AgentName,
		Amount:                       req.Amount,
		Product:                      product,
		Reference:                    reference,
		Service:                      c.cfg.ServiceType,
		CallbackURLCode:              c.cfg.CallbackURLCode,
		CustomerAccountNumber:        req.PhoneNumber,
		MerchantOperationAccountCode: req.AccountCode,
		TransactionType:              c.cfg.TransactionType,
		OwnerCharge:                  c.cfg.OwnerCharge,
		OperatorOwnerCharge:          c.cfg.OperatorOwnerCharge,
		FreeInfo:                     c.cfg.FreeInfo,
		OperatorCode:                 req.OperatorCode,
	})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s/rest", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.PaymentCode)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.setJSONHeaders(httpReq, req.Secret)

	var resp initiatePaymentResponse
	if err := c.do(httpReq, OpInitiate, &resp); err != nil {
		return nil, err
	}

	status := domain.ParseTransactionStatus(resp.Status)
	if status == domain.StatusFailed {
		return nil, &domain.GatewayError{
			Kind:      domain.ErrGatewayRejected,
			Operation: OpInitiate,
			Message:   orDefault(resp.Message, "payment failed"),
		}
	}
	if resp.StatusCode != "200" && status != domain.StatusPending {
		return nil, &domain.GatewayError{
			Kind:      domain.ErrGatewayRejected,
			Operation: OpInitiate,
			Message:   orDefault(resp.Message, "payment initiation not accepted"),
		}
	}

	return &domain.InitiatedPayment{
		Status:              status,
		TransactionID:       resp.ReferenceID,
		MerchantReferenceID: resp.MerchantReferenceID,
		Reference:           reference,
		Operator:            resp.Operator,
		Message:             orDefault(resp.Message, "payment initiated"),
	}, nil
}

func (c *MyPVITClient) QueryStatus(ctx context.Context, transactionID, secret string) (*domain.PaymentStatus, error) {
	q := url.Values{}
	q.Set("reference_id", transactionID)

	var resp statusResponse
	if err := c.get(ctx, OpStatus, "status", q, secret, &resp); err != nil {
		return nil, err
	}

	id := resp.ReferenceID
	if id == "" {
		id = transactionID
	}
	return &domain.PaymentStatus{
		TransactionID: id,
		Status:        domain.ParseTransactionStatus(resp.Status),
		Amount:        int64(resp.Amount),
		Operator:      resp.Operator,
		Timestamp:     string(resp.Timestamp),
	}, nil
}

func (c *MyPVITClient) CalculateFees(ctx context.Context, amount int64, secret string) (*domain.FeeQuote, error) {
	q := url.Values{}
	q.Set("amount", strconv.FormatInt(amount, 10))

	var resp feesResponse
	if err := c.get(ctx, OpFees, "fees", q, secret, &resp); err != nil {
		return nil, err
	}
	return &domain.FeeQuote{
		Amount:    amount,
		Fees:      resp.Fees,
		Total:     resp.TotalAmount,
		Breakdown: resp.Breakdown,
	}, nil
}

func (c *MyPVITClient) CheckBalance(ctx context.Context, secret string) (*domain.Balance, error) {
	var resp balanceResponse
	if err := c.get(ctx, OpBalance, "balance", nil, secret, &resp); err != nil {
		return nil, err
	}
	return &domain.Balance{Balance: resp.Balance, Currency: resp.Currency}, nil
}

func (c *MyPVITClient) get(ctx context.Context, op, path string, q url.Values, secret string, out any) error {
	endpoint := fmt.Sprintf("%s/%s/%s", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.CodeURL, path)
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	c.setJSONHeaders(httpReq, secret)
	return c.do(httpReq, op, out)
}

func (c *MyPVITClient) setJSONHeaders(req *http.Request, secret string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Secret", secret)
	req.Header.Set("X-Callback-MediaType", "application/json")
}

func (c *MyPVITClient) do(req *http.Request, op string, out any) error {
	start := time.Now()
	response, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(op, 0, start)
		return &domain.GatewayError{
			Kind:      domain.ErrGatewayUnavailable,
			Operation: op,
			Message:   err.Error(),
		}
	}
	defer response.Body.Close()
	c.observe(op, response.StatusCode, start)

	responseBodyBytes, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return &domain.GatewayError{
			Kind:       domain.ErrGatewayUnavailable,
			Operation:  op,
			StatusCode: response.StatusCode,
			Message:    err.Error(),
		}
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return mapHTTPError(op, response.StatusCode, responseBodyBytes)
	}

	if err := json.Unmarshal(responseBodyBytes, out); err != nil {
		return &domain.GatewayError{
			Kind:       domain.ErrGatewayRejected,
			Operation:  op,
			StatusCode: response.StatusCode,
			Message:    "malformed response: " + err.Error(),
		}
	}
	return nil
}

func (c *MyPVITClient) observe(op string, statusCode int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveGatewayCall(op, statusCode, time.Since(start))
	}
}

func mapHTTPError(op string, statusCode int, body []byte) error {
	var errorResponse errorResponse
	_ = json.Unmarshal(body, &errorResponse)

	gerr := &domain.GatewayError{
		Operation:  op,
		StatusCode: statusCode,
		Message:    errorResponse.Message,
		Messages:   errorResponse.Messages,
	}
	switch statusCode {
	case http.StatusUnauthorized:
		gerr.Kind = domain.ErrAuthenticationFailed
		gerr.Message = orDefault(gerr.Message, "secret expired or invalid")
	case http.StatusForbidden:
		gerr.Kind = domain.ErrCallbackNotActivated
		gerr.Message = orDefault(gerr.Message, "reception url not activated")
	case http.StatusUnprocessableEntity:
		gerr.Kind = domain.ErrValidationFailed
		if len(gerr.Messages) == 0 {
			gerr.Messages = []string{orDefault(gerr.Message, "validation constraints not met")}
		}
	case http.StatusBadRequest:
		gerr.Kind = domain.ErrValidationFailed
		gerr.Message = orDefault(gerr.Message, "invalid payment data")
	default:
		gerr.Kind = domain.ErrGatewayRejected
		if gerr.Message == "" && len(body) > 0 && !json.Valid(body) {
			gerr.Message = strings.TrimSpace(string(body[:min(len(body), 200)]))
		}
	}
	return gerr
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
