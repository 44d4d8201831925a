package setup

import (
	"fmt"

	"github.com/LavaJover/shvark-mypvit-relay/internal/client"
	"github.com/LavaJover/shvark-mypvit-relay/internal/usecase/inventory"
	"github.com/LavaJover/shvark-mypvit-relay/internal/usecase/payment"
	"github.com/LavaJover/shvark-mypvit-relay/internal/usecase/routing"
	"github.com/LavaJover/shvark-mypvit-relay/internal/usecase/secret"
	"github.com/LavaJover/shvark-mypvit-relay/internal/usecase/webhook"
)

type UseCases struct {
	SecretUsecase    secret.SecretUsecase
	InventoryUsecase inventory.InventoryUsecase
	WebhookUsecase   webhook.WebhookUsecase
	PaymentUsecase   payment.PaymentUsecase
}

func InitializeUseCases(deps *Dependencies) (*UseCases, error) {
	gateway, err := client.NewMyPVITClient(deps.Config.MyPVIT, nil, deps.Metrics)
	if err != nil {
		return nil, fmt.Errorf("gateway client: %w", err)
	}
	repos := deps.Repositories

	secretUsecase := secret.NewDefaultSecretUsecase(deps.Config, repos.SecretRepo, gateway, deps.Observer)
	inventoryUsecase := inventory.NewDefaultInventoryUsecase(repos.InventoryRepo, deps.Observer)
	webhookUsecase := webhook.NewDefaultWebhookUsecase(
		repos.TransactionRepo,
		repos.WebhookLogRepo,
		inventoryUsecase,
		deps.Observer,
	)
	paymentUsecase := payment.NewDefaultPaymentUsecase(
		deps.Config,
		routing.NewRouterFromConfig(deps.Config),
		secretUsecase,
		gateway,
		repos.TransactionRepo,
		webhookUsecase,
		deps.Observer,
	)

	return &UseCases{
		SecretUsecase:    secretUsecase,
		InventoryUsecase: inventoryUsecase,
		WebhookUsecase:   webhookUsecase,
		PaymentUsecase:   paymentUsecase,
	}, nil
}
