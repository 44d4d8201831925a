package response

import (
	"encoding/json"
	"time"
)

type ErrorResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

type InitiatePaymentResponse struct {
	Success             bool   `json:"success"`
	TransactionID       string `json:"transactionId"`
	MerchantReferenceID string `json:"merchantReferenceId"`
	Reference           string `json:"reference"`
	Status              string `json:"status"`
	Amount              int64  `json:"amount"`
	Operator            string `json:"operator,omitempty"`
	Message             string `json:"message,omitempty"`
}

type PaymentStatusResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId"`
	ReservationID string `json:"reservationId,omitempty"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"`
	Operator      string `json:"operator,omitempty"`
	Timestamp     string `json:"timestamp,omitempty"`
}

type FeesResponse struct {
	Success     bool            `json:"success"`
	Amount      int64           `json:"amount"`
	Fees        float64         `json:"fees"`
	TotalAmount float64         `json:"totalAmount"`
	Breakdown   json.RawMessage `json:"breakdown,omitempty"`
}

type BalanceResponse struct {
	Success  bool    `json:"success"`
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
}

type WebhookResponse struct {
	Success bool `json:"success"`
}

type SecretResponse struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	AccountCode string    `json:"accountCode"`
	ExpiresIn   int64     `json:"expiresIn"`
	RenewedAt   time.Time `json:"renewedAt"`
}

type HealthResponse struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	Environment string    `json:"environment"`
	Timestamp   time.Time `json:"timestamp"`
}
