package repository

import (
	"context"
	"errors"

	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
	"github.com/LavaJover/shvark-mypvit-relay/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-mypvit-relay/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultSecretRepository struct {
	db *gorm.DB
}

func NewDefaultSecretRepository(db *gorm.DB) *DefaultSecretRepository {
	return &DefaultSecretRepository{db: db}
}

func (r *DefaultSecretRepository) GetSecret(ctx context.Context, accountCode string) (*domain.Secret, error) {
	var secretModel models.SecretModel
	err := r.db.WithContext(ctx).Where("account_code = ?", accountCode).First(&secretModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return mappers.ToDomainSecret(&secretModel), nil
}

// SaveSecret overwrites the whole record of the account.
func (r *DefaultSecretRepository) SaveSecret(ctx context.Context, secret *domain.Secret) error {
	secretModel := mappers.ToGORMSecret(secret)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_code"}},
			UpdateAll: true,
		}).
		Create(secretModel).Error
}
