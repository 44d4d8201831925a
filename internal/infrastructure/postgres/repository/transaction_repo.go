package repository

import (
	"context"
	"errors"

	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
	"github.com/LavaJover/shvark-mypvit-relay/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-mypvit-relay/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultTransactionRepository struct {
	db *gorm.DB
}

func NewDefaultTransactionRepository(db *gorm.DB) *DefaultTransactionRepository {
	return &DefaultTransactionRepository{db: db}
}

func (r *DefaultTransactionRepository) CreateTransaction(ctx context.Context, tx *domain.PaymentTransaction) error {
	return r.db.WithContext(ctx).Create(mappers.ToGORMTransaction(tx)).Error
}

func (r *DefaultTransactionRepository) GetTransactionByTransactionID(ctx context.Context, transactionID string) (*domain.PaymentTransaction, error) {
	var transactionModel models.PaymentTransactionModel
	err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&transactionModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return mappers.ToDomainTransaction(&transactionModel), nil
}

func (r *DefaultTransactionRepository) UpdateTransactionStatus(ctx context.Context, transactionID string, upd domain.TransactionStatusChange) error {
	updates := map[string]any{
		"status":     string(upd.Status),
		"updated_at": upd.UpdatedAt,
	}
	if upd.Operator != "" {
		updates["operator"] = upd.Operator
	}
	if upd.WebhookReceivedAt != nil {
		updates["webhook_received_at"] = *upd.WebhookReceivedAt
	}

	result := r.db.WithContext(ctx).
		Model(&models.PaymentTransactionModel{}).
		Where("transaction_id = ?", transactionID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
