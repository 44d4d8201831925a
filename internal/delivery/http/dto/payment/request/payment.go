package request

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
	paymentdto "github.com/LavaJover/shvark-mypvit-relay/internal/usecase/dto/payment"
	secretdto "github.com/LavaJover/shvark-mypvit-relay/internal/usecase/dto/secret"
)

type InitiatePaymentRequest struct {
	ReservationID string            `json:"reservationId"`
	Amount        Int64             `json:"amount"`
	PhoneNumber   string            `json:"phoneNumber"`
	OperatorCode  string            `json:"operatorCode"`
	Reference     string            `json:"reference"`
	Metadata      map[string]string `json:"metadata"`
}

func (r *InitiatePaymentRequest) ToInput() *paymentdto.InitiatePaymentInput {
	return &paymentdto.InitiatePaymentInput{
		ReservationID: r.ReservationID,
		Amount:        r.Amount.Value,
		PhoneNumber:   r.PhoneNumber,
		OperatorCode:  r.OperatorCode,
		Reference:     r.Reference,
		Metadata:      r.Metadata,
	}
}

// WebhookRequest lists every field name the gateway has been seen to use.
// Amount stays raw: the status must survive an amount that does not parse.
type WebhookRequest struct {
	TransactionID            string          `json:"transactionId"`
	TransactionIDSnake       string          `json:"transaction_id"`
	ReferenceID              string          `json:"reference_id"`
	MerchantReferenceID      string          `json:"merchantReferenceId"`
	MerchantReferenceIDSnake string          `json:"merchant_reference_id"`
	Status                   string          `json:"status"`
	Amount                   json.RawMessage `json:"amount"`
	Operator                 string          `json:"operator"`
}

func (r *WebhookRequest) ToStatusUpdate(receivedAt time.Time) domain.StatusUpdate {
	amount, _, err := parseInt64(r.Amount)
	if err != nil {
		slog.Warn("ignoring webhook amount", "amount", string(r.Amount), "error", err.Error())
	}
	return domain.StatusUpdate{
		TransactionID:       first(r.TransactionID, r.TransactionIDSnake, r.ReferenceID),
		MerchantReferenceID: first(r.MerchantReferenceID, r.MerchantReferenceIDSnake),
		Status:              domain.ParseTransactionStatus(r.Status),
		Amount:              amount,
		Operator:            r.Operator,
		ReceivedAt:          receivedAt,
		FromWebhook:         true,
	}
}

type RenewSecretRequest struct {
	AccountCode string `json:"accountCode"`
}

// ReceiveTokenRequest is the out-of-band secret push of the gateway.
type ReceiveTokenRequest struct {
	OperationAccountCode         string `json:"operation_account_code"`
	MerchantOperationAccountCode string `json:"merchant_operation_account_code"`
	OperationAccountCodeCamel    string `json:"operationAccountCode"`
	Secret                       string `json:"secret"`
	SecretKey                    string `json:"secret_key"`
	ExpiresIn                    Int64  `json:"expires_in"`
	ExpiresInCamel               Int64  `json:"expiresIn"`
}

func (r *ReceiveTokenRequest) ToInput() *secretdto.ReceiveSecretInput {
	expiresIn := r.ExpiresIn
	if !expiresIn.Set {
		expiresIn = r.ExpiresInCamel
	}
	return &secretdto.ReceiveSecretInput{
		AccountCode: first(r.OperationAccountCode, r.MerchantOperationAccountCode, r.OperationAccountCodeCamel),
		Secret:      first(r.Secret, r.SecretKey),
		ExpiresIn:   expiresIn.Value,
	}
}
