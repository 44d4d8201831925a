package mappers

import (
	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
	"github.com/LavaJover/shvark-mypvit-relay/internal/infrastructure/postgres/models"
)

func ToDomainSecret(model *models.SecretModel) *domain.Secret {
	return &domain.Secret{
		AccountCode:  model.AccountCode,
		Value:        model.Value,
		ExpiresIn:    model.ExpiresIn,
		CreatedAt:    model.CreatedAt,
		ExpirationAt: model.ExpirationAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func ToGORMSecret(secret *domain.Secret) *models.SecretModel {
	return &models.SecretModel{
		AccountCode:  secret.AccountCode,
		Value:        secret.Value,
		ExpiresIn:    secret.ExpiresIn,
		CreatedAt:    secret.CreatedAt,
		ExpirationAt: secret.ExpirationAt,
		UpdatedAt:    secret.UpdatedAt,
	}
}
