package secret

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-mypvit-relay/internal/config"
	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
	secretdto "github.com/LavaJover/shvark-mypvit-relay/internal/usecase/dto/secret"
)

// SecretUsecase owns the lifecycle of the gateway secrets. The store is the
// only source of truth: nothing is cached between calls, so several relay
// processes can share one store.
type SecretUsecase interface {
	EnsureValidSecret(ctx context.Context, accountCode string) (*domain.Secret, error)
	RenewSecret(ctx context.Context, accountCode string) (*domain.Secret, error)
	ReceiveSecret(ctx context.Context, input *secretdto.ReceiveSecretInput) (*domain.Secret, error)
}

type DefaultSecretUsecase struct {
	cfg        *config.Config
	secretRepo domain.SecretRepository
	gateway    domain.PaymentGateway
	events     domain.EventSink
	now        func() time.Time
}

func NewDefaultSecretUsecase(
	cfg *config.Config,
	secretRepo domain.SecretRepository,
	gateway domain.PaymentGateway,
	events domain.EventSink,
) *DefaultSecretUsecase {
	if events == nil {
		events = domain.NopEventSink{}
	}
	return &DefaultSecretUsecase{
		cfg:        cfg,
		secretRepo: secretRepo,
		gateway:    gateway,
		events:     events,
		now:        time.Now,
	}
}

func (uc *DefaultSecretUsecase) EnsureValidSecret(ctx context.Context, accountCode string) (*domain.Secret, error) {
	secret, err := uc.secretRepo.GetSecret(ctx, accountCode)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load secret for %s: %w", accountCode, err)
	}
	if err == nil && !secret.Expired(uc.now()) {
		return secret, nil
	}
	return uc.RenewSecret(ctx, accountCode)
}

// RenewSecret always calls the gateway, authenticating with the stored secret
// or, before the first renewal, with the bootstrap secret from config.
func (uc *DefaultSecretUsecase) RenewSecret(ctx context.Context, accountCode string) (*domain.Secret, error) {
	account, ok := uc.cfg.Account(accountCode)
	if !ok {
		return nil, fmt.Errorf("%w: no password configured for account %q", domain.ErrConfiguration, accountCode)
	}

	current := uc.cfg.MyPVIT.BootstrapSecret
	stored, err := uc.secretRepo.GetSecret(ctx, accountCode)
	switch {
	case err == nil && stored.Value != "":
		current = stored.Value
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("load secret for %s: %w", accountCode, err)
	}

	start := uc.now()
	renewed, err := uc.gateway.RenewSecret(ctx, domain.RenewSecretRequest{
		AccountCode:   account.Code,
		CallbackCode:  uc.cfg.MyPVIT.CallbackURLCode,
		Password:      account.Password,
		CurrentSecret: current,
	})
	if err != nil {
		err = renewalError(err)
		uc.events.Emit(ctx, domain.PaymentEvent{
			Type:        domain.EventSecretRenewalFailed,
			AccountCode: accountCode,
			Err:         err,
			Duration:    uc.now().Sub(start),
			OccurredAt:  uc.now(),
		})
		return nil, err
	}

	now := uc.now()
	secret := domain.NewSecret(accountCode, renewed.Secret, renewed.ExpiresIn, now)
	if err := uc.secretRepo.SaveSecret(ctx, secret); err != nil {
		return nil, fmt.Errorf("save secret for %s: %w", accountCode, err)
	}

	uc.events.Emit(ctx, domain.PaymentEvent{
		Type:        domain.EventSecretRenewed,
		AccountCode: accountCode,
		Duration:    now.Sub(start),
		OccurredAt:  now,
	})
	return secret, nil
}

// ReceiveSecret stores a secret pushed by the gateway out of band.
func (uc *DefaultSecretUsecase) ReceiveSecret(ctx context.Context, input *secretdto.ReceiveSecretInput) (*domain.Secret, error) {
	var missing []string
	if input.AccountCode == "" {
		missing = append(missing, "operationAccountCode")
	}
	if input.Secret == "" {
		missing = append(missing, "secret")
	}
	if input.ExpiresIn <= 0 {
		missing = append(missing, "expiresIn")
	}
	if len(missing) > 0 {
		return nil, domain.NewValidationError(missing...)
	}

	now := uc.now()
	secret := domain.NewSecret(input.AccountCode, input.Secret, input.ExpiresIn, now)
	if err := uc.secretRepo.SaveSecret(ctx, secret); err != nil {
		return nil, fmt.Errorf("save received secret for %s: %w", input.AccountCode, err)
	}

	uc.events.Emit(ctx, domain.PaymentEvent{
		Type:        domain.EventSecretReceived,
		AccountCode: input.AccountCode,
		OccurredAt:  now,
	})
	return secret, nil
}

// renewalError folds every renewal failure into AuthenticationFailed (the
// gateway refused the credentials) or GatewayUnavailable.
func renewalError(err error) error {
	kind := domain.ErrGatewayUnavailable
	if errors.Is(err, domain.ErrAuthenticationFailed) || errors.Is(err, domain.ErrCallbackNotActivated) {
		kind = domain.ErrAuthenticationFailed
	}

	var gerr *domain.GatewayError
	if errors.As(err, &gerr) {
		out := *gerr
		out.Kind = kind
		return &out
	}
	return fmt.Errorf("%w: %v", kind, err)
}
