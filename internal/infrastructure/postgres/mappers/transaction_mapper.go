package mappers

import (
	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
	"github.com/LavaJover/shvark-mypvit-relay/internal/infrastructure/postgres/models"
)

func ToDomainTransaction(model *models.PaymentTransactionModel) *domain.PaymentTransaction {
	return &domain.PaymentTransaction{
		ID:                  model.ID,
		ReservationID:       model.ReservationID,
		TransactionID:       model.TransactionID,
		MerchantReferenceID: model.MerchantReferenceID,
		Reference:           model.Reference,
		AccountCode:         model.AccountCode,
		Amount:              model.Amount,
		PhoneNumber:         model.PhoneNumber,
		Operator:            model.Operator,
		Status:              domain.TransactionStatus(model.Status),
		CreatedAt:           model.CreatedAt,
		UpdatedAt:           model.UpdatedAt,
		WebhookReceivedAt:   model.WebhookReceivedAt,
	}
}

func ToGORMTransaction(tx *domain.PaymentTransaction) *models.PaymentTransactionModel {
	return &models.PaymentTransactionModel{
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
