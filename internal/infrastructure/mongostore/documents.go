package mongostore

import (
	"time"

	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
)

const secretKeyPrefix = "my_pvit_secret_token:"

type secretDocument struct {
	ID                   string    `bson:"_id"`
	Secret               string    `bson:"secret"`
	ExpiresIn            int64     `bson:"expires_in"`
	OperationAccountCode string    `bson:"operation_account_code"`
	CreatedAt            time.Time `bson:"created_at"`
	ExpirationDate       time.Time `bson:"expiration_date"`
	UpdatedAt            time.Time `bson:"updated_at"`
}

func toSecretDocument(s *domain.Secret) secretDocument {
	return secretDocument{
		ID:                   secretKeyPrefix + s.AccountCode,
		Secret:               s.Value,
		ExpiresIn:            s.ExpiresIn,
		OperationAccountCode: s.AccountCode,
		CreatedAt:            s.CreatedAt,
		ExpirationDate:       s.ExpirationAt,
		UpdatedAt:            s.UpdatedAt,
	}
}

func (d secretDocument) toDomain() *domain.Secret {
	return &domain.Secret{
		AccountCode:  d.OperationAccountCode,
		Value:        d.Secret,
		ExpiresIn:    d.ExpiresIn,
		CreatedAt:    d.CreatedAt,
		ExpirationAt: d.ExpirationDate,
		UpdatedAt:    d.UpdatedAt,
	}
}

type transactionDocument struct {
	ID                  string     `bson:"_id"`
	ReservationID       string     `bson:"reservationId"`
	TransactionID       string     `bson:"transactionId"`
	MerchantReferenceID string     `bson:"merchantReferenceId,omitempty"`
	Reference           string     `bson:"reference,omitempty"`
	AccountCode         string     `bson:"accountCode"`
	Amount              int64      `bson:"amount"`
	PhoneNumber         string     `bson:"phoneNumber"`
	Operator            string     `bson:"operator"`
	Status              string     `bson:"status"`
	CreatedAt           time.Time  `bson:"createdAt"`
	UpdatedAt           time.Time  `bson:"updatedAt"`
	WebhookReceivedAt   *time.Time `bson:"webhookReceivedAt,omitempty"`
}

func toTransactionDocument(tx *domain.PaymentTransaction) transactionDocument {
	return transactionDocument{
		ID:                  tx.ID,
		ReservationID:       tx.ReservationID,
		TransactionID:       tx.TransactionID,
		MerchantReferenceID: tx.MerchantReferenceID,
		Reference:           tx.Reference,
		AccountCode:         tx.AccountCode,
		Amount:              tx.Amount,
		PhoneNumber:         tx.PhoneNumber,
		Operator:            tx.Operator,
		Status:              string(tx.Status),
		CreatedAt:           tx.CreatedAt,
		UpdatedAt:           tx.UpdatedAt,
		WebhookReceivedAt:   tx.WebhookReceivedAt,
	}
}

func (d transactionDocument) toDomain() *domain.PaymentTransaction {
	return &domain.PaymentTransaction{
		ID:                  d.ID,
		ReservationID:       d.ReservationID,
		TransactionID:       d.TransactionID,
		MerchantReferenceID: d.MerchantReferenceID,
		Reference:           d.Reference,
		AccountCode:         d.AccountCode,
		Amount:              d.Amount,
		PhoneNumber:         d.PhoneNumber,
		Operator:            d.Operator,
		Status:              domain.TransactionStatus(d.Status),
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
		WebhookReceivedAt:   d.WebhookReceivedAt,
	}
}

type saleDocument struct {
	ID            string `bson:"_id"`
	ReservationID string `bson:"reservationId"`
	VoyageID      string `bson:"voyageId"`
	Classe        string `bson:"classe"`
	Status        string `bson:"status"`
}

func (d saleDocument) toDomain() *domain.Sale {
	return &domain.Sale{
		ID:            d.ID,
		ReservationID: d.ReservationID,
		VoyageID:      d.VoyageID,
		Classe:        d.Classe,
		Status:        domain.SaleStatus(d.Status),
	}
}

type tripDocument struct {
	ID            string `bson:"_id"`
	PlacePriseEco int64  `bson:"place_prise_eco"`
	PlacePriseVIP int64  `bson:"place_prise_vip"`
}

type webhookDocument struct {
	ID            string    `bson:"_id"`
	TransactionID string    `bson:"transactionId"`
	Status        string    `bson:"status"`
	Operator      string    `bson:"operator"`
	Amount        int64     `bson:"amount"`
	RawPayload    string    `bson:"rawPayload"`
	Outcome       string    `bson:"outcome"`
	Error         string    `bson:"error,omitempty"`
	ReceivedAt    time.Time `bson:"receivedAt"`
}
