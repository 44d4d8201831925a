package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-mypvit-relay/internal/config"
	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
	paymentdto "github.com/LavaJover/shvark-mypvit-relay/internal/usecase/dto/payment"
	"github.com/LavaJover/shvark-mypvit-relay/internal/usecase/routing"
	"github.com/LavaJover/shvark-mypvit-relay/internal/usecase/secret"
	"github.com/LavaJover/shvark-mypvit-relay/internal/usecase/webhook"
	"github.com/google/uuid"
)

type PaymentUsecase interface {
	InitiatePayment(ctx context.Context, input *paymentdto.InitiatePaymentInput) (*paymentdto.InitiatePaymentOutput, error)
	GetPaymentStatus(ctx context.Context, transactionID string) (*paymentdto.PaymentStatusOutput, error)
	CalculateFees(ctx context.Context, amount int64) (*domain.FeeQuote, error)
	CheckBalance(ctx context.Context) (*domain.Balance, error)
}

type DefaultPaymentUsecase struct {
	cfg             *config.Config
	router          *routing.Router
	secrets         secret.SecretUsecase
	gateway         domain.PaymentGateway
	transactionRepo domain.TransactionRepository
	reconciler      webhook.WebhookUsecase
	events          domain.EventSink
	now             func() time.Time
}

func NewDefaultPaymentUsecase(
	cfg *config.Config,
	router *routing.Router,
	secrets secret.SecretUsecase,
	gateway domain.PaymentGateway,
	transactionRepo domain.TransactionRepository,
	reconciler webhook.WebhookUsecase,
	events domain.EventSink,
) *DefaultPaymentUsecase {
	if events == nil {
		events = domain.NopEventSink{}
	}
	return &DefaultPaymentUsecase{
		cfg:             cfg,
		router:          router,
		secrets:         secrets,
		gateway:         gateway,
		transactionRepo: transactionRepo,
		reconciler:      reconciler,
		events:          events,
		now:             time.Now,
	}
}

// InitiatePayment stores exactly one PENDING transaction when the gateway
// accepts the request, and nothing on any failure.
func (uc *DefaultPaymentUsecase) InitiatePayment(ctx context.Context, input *paymentdto.InitiatePaymentInput) (*paymentdto.InitiatePaymentOutput, error) {
	if err := uc.validateInitiation(input); err != nil {
		return nil, err
	}

	route := uc.router.Resolve(input.PhoneNumber)
	operator := route.Operator
	if input.OperatorCode != "" {
		operator = input.OperatorCode
	}
	phone := routing.NormalizePhone(input.PhoneNumber)

	start := uc.now()
	var initiated *domain.InitiatedPayment
	err := uc.withSecret(ctx, route.Account, func(secret string) error {
		var err error
		initiated, err = uc.gateway.InitiatePayment(ctx, domain.InitiatePaymentRequest{
			Amount:        input.Amount,
			PhoneNumber:   phone,
			Reference:     input.Reference,
			OperatorCode:  operator,
			AccountCode:   route.Account,
			Secret:        secret,
			ReservationID: input.ReservationID,
			Metadata:      input.Metadata,
		})
		return err
	})
	if err == nil && initiated.TransactionID == "" {
		err = &domain.GatewayError{
			Kind:      domain.ErrGatewayRejected,
			Operation: "initiate_payment",
			Message:   "response carries no transaction id",
		}
	}
	if err != nil {
		uc.events.Emit(ctx, domain.PaymentEvent{
			Type:          domain.EventInitiationFailed,
			ReservationID: input.ReservationID,
			AccountCode:   route.Account,
			Operator:      operator,
			Amount:        input.Amount,
			Err:           err,
			Duration:      uc.now().Sub(start),
			OccurredAt:    uc.now(),
		})
		return nil, err
	}

	if initiated.Operator != "" {
		operator = initiated.Operator
	}
	now := uc.now()
	tx := &domain.PaymentTransaction{
		ID:                  uuid.NewString(),
		ReservationID:       input.ReservationID,
		TransactionID:       initiated.TransactionID,
		MerchantReferenceID: initiated.MerchantReferenceID,
		Reference:           initiated.Reference,
		AccountCode:         route.Account,
		Amount:              input.Amount,
		PhoneNumber:         phone,
		Operator:            operator,
		Status:              domain.StatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := uc.transactionRepo.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("store transaction %s: %w", tx.TransactionID, err)
	}

	uc.events.Emit(ctx, domain.PaymentEvent{
		Type:          domain.EventPaymentInitiated,
		TransactionID: tx.TransactionID,
		ReservationID: tx.ReservationID,
		AccountCode:   tx.AccountCode,
		Operator:      tx.Operator,
		Status:        tx.Status,
		Amount:        tx.Amount,
		Duration:      now.Sub(start),
		OccurredAt:    now,
	})

	return &paymentdto.InitiatePaymentOutput{
		TransactionID:       tx.TransactionID,
		MerchantReferenceID: tx.MerchantReferenceID,
		Reference:           tx.Reference,
		Status:              tx.Status,
		Amount:              tx.Amount,
		Operator:            tx.Operator,
		Message:             initiated.Message,
	}, nil
}

// GetPaymentStatus asks the gateway for the current status and feeds the
// answer through the same reconciliation as a webhook.
func (uc *DefaultPaymentUsecase) GetPaymentStatus(ctx context.Context, transactionID string) (*paymentdto.PaymentStatusOutput, error) {
	if transactionID == "" {
		return nil, domain.NewValidationError("transactionId is required")
	}

	account := uc.cfg.DefaultAccount()
	stored, err := uc.transactionRepo.GetTransactionByTransactionID(ctx, transactionID)
	switch {
	case err == nil:
		account = stored.AccountCode
	case errors.Is(err, domain.ErrNotFound):
		stored = nil
	default:
		return nil, fmt.Errorf("load transaction %s: %w", transactionID, err)
	}

	var status *domain.PaymentStatus
	err = uc.withSecret(ctx, account, func(secret string) error {
		var err error
		status, err = uc.gateway.QueryStatus(ctx, transactionID, secret)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := &paymentdto.PaymentStatusOutput{
		TransactionID: transactionID,
		Status:        status.Status,
		Amount:        status.Amount,
		Operator:      status.Operator,
		Timestamp:     status.Timestamp,
	}
	if stored == nil {
		return out, nil
	}

	out.ReservationID = stored.ReservationID
	if out.Amount == 0 {
		out.Amount = stored.Amount
	}
	if stored.Status != status.Status {
		_, err := uc.reconciler.Apply(ctx, domain.StatusUpdate{
			TransactionID: transactionID,
			Status:        status.Status,
			Amount:        status.Amount,
			Operator:      status.Operator,
			ReceivedAt:    uc.now(),
		})
		if err != nil {
			slog.Error("failed to reconcile queried status", "transaction_id", transactionID, "error", err.Error())
		}
	}
	return out, nil
}

func (uc *DefaultPaymentUsecase) CalculateFees(ctx context.Context, amount int64) (*domain.FeeQuote, error) {
	if amount <= 0 {
		return nil, domain.NewValidationError("amount must be a positive integer")
	}
	var quote *domain.FeeQuote
	err := uc.withSecret(ctx, uc.cfg.DefaultAccount(), func(secret string) error {
		var err error
		quote, err = uc.gateway.CalculateFees(ctx, amount, secret)
		return err
	})
	return quote, err
}

func (uc *DefaultPaymentUsecase) CheckBalance(ctx context.Context) (*domain.Balance, error) {
	var balance *domain.Balance
	err := uc.withSecret(ctx, uc.cfg.DefaultAccount(), func(secret string) error {
		var err error
		balance, err = uc.gateway.CheckBalance(ctx, secret)
		return err
	})
	return balance, err
}

// withSecret runs call with a valid secret of account. When the gateway
// still answers 401 the secret is renewed once and call retried once.
func (uc *DefaultPaymentUsecase) withSecret(ctx context.Context, account string, call func(secret string) error) error {
	secret, err := uc.secrets.EnsureValidSecret(ctx, account)
	if err != nil {
		return err
	}
	err = call(secret.Value)
	if !errors.Is(err, domain.ErrAuthenticationFailed) {
		return err
	}

	slog.Warn("gateway refused secret, renewing", "account", account)
	secret, err = uc.secrets.RenewSecret(ctx, account)
	if err != nil {
		return err
	}
	return call(secret.Value)
}

func (uc *DefaultPaymentUsecase) validateInitiation(input *paymentdto.InitiatePaymentInput) error {
	var messages []string
	if input.ReservationID == "" {
		messages = append(messages, "reservationId is required")
	}
	if input.Amount < uc.cfg.MyPVIT.MinAmount || input.Amount > uc.cfg.MyPVIT.MaxAmount {
		messages = append(messages, fmt.Sprintf("amount must be between %d and %d", uc.cfg.MyPVIT.MinAmount, uc.cfg.MyPVIT.MaxAmount))
	}
	if routing.NormalizePhone(input.PhoneNumber) == "" {
		messages = append(messages, "phoneNumber is required")
	}
	if len(input.Reference) > domain.MaxReferenceLength {
		messages = append(messages, fmt.Sprintf("reference must be at most %d characters", domain.MaxReferenceLength))
	}
	if len(messages) > 0 {
		return domain.NewValidationError(messages...)
	}
	return nil
}
