package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
	"github.com/LavaJover/shvark-mypvit-relay/internal/usecase/inventory"
	"github.com/google/uuid"
)

// WebhookUsecase reconciles stored transactions with the status reported by
// the gateway, whether pushed (webhook) or pulled (status query).
type WebhookUsecase interface {
	HandleWebhook(ctx context.Context, update domain.StatusUpdate, rawPayload []byte) domain.WebhookOutcome
	Apply(ctx context.Context, update domain.StatusUpdate) (domain.WebhookOutcome, error)
}

type DefaultWebhookUsecase struct {
	transactionRepo domain.TransactionRepository
	webhookLogRepo  domain.WebhookLogRepository
	inventory       inventory.InventoryUsecase
	events          domain.EventSink
	now             func() time.Time
}

func NewDefaultWebhookUsecase(
	transactionRepo domain.TransactionRepository,
	webhookLogRepo domain.WebhookLogRepository,
	inventoryUc inventory.InventoryUsecase,
	events domain.EventSink,
) *DefaultWebhookUsecase {
	if events == nil {
		events = domain.NopEventSink{}
	}
	return &DefaultWebhookUsecase{
		transactionRepo: transactionRepo,
		webhookLogRepo:  webhookLogRepo,
		inventory:       inventoryUc,
		events:          events,
		now:             time.Now,
	}
}

// HandleWebhook never fails: the outcome is recorded in the delivery log and
// the caller always acknowledges, so the gateway does not redeliver forever.
func (uc *DefaultWebhookUsecase) HandleWebhook(ctx context.Context, update domain.StatusUpdate, rawPayload []byte) domain.WebhookOutcome {
	if update.ReceivedAt.IsZero() {
		update.ReceivedAt = uc.now()
	}
	update.FromWebhook = true

	outcome, err := uc.Apply(ctx, update)

	delivery := &domain.WebhookDelivery{
		ID:            uuid.NewString(),
		TransactionID: update.TransactionID,
		Status:        string(update.Status),
		Operator:      update.Operator,
		Amount:        update.Amount,
		RawPayload:    rawPayload,
		Outcome:       outcome,
		ReceivedAt:    update.ReceivedAt,
	}
	if err != nil {
		delivery.Error = err.Error()
	}
	if uc.webhookLogRepo != nil {
		if logErr := uc.webhookLogRepo.SaveWebhookDelivery(ctx, delivery); logErr != nil {
			slog.Error("failed to save webhook delivery", "transaction_id", update.TransactionID, "error", logErr.Error())
		}
	}
	return outcome
}

// Apply writes the reported status unconditionally, then runs the matching
// compensation. Compensations are idempotent, so replays are safe.
func (uc *DefaultWebhookUsecase) Apply(ctx context.Context, update domain.StatusUpdate) (domain.WebhookOutcome, error) {
	if update.TransactionID == "" {
		uc.emitUnknown(ctx, update)
		return domain.WebhookUnknownTransaction, nil
	}

	tx, err := uc.transactionRepo.GetTransactionByTransactionID(ctx, update.TransactionID)
	if errors.Is(err, domain.ErrNotFound) {
		uc.emitUnknown(ctx, update)
		return domain.WebhookUnknownTransaction, nil
	}
	if err != nil {
		return uc.fail(ctx, update, "", fmt.Errorf("load transaction %s: %w", update.TransactionID, err))
	}

	switch update.Status {
	case domain.StatusPending, domain.StatusSuccess, domain.StatusFailed:
	default:
		return domain.WebhookIgnored, nil
	}

	now := uc.now()
	change := domain.TransactionStatusChange{
		Status:    update.Status,
		Operator:  update.Operator,
		UpdatedAt: now,
	}
	if update.FromWebhook {
		receivedAt := update.ReceivedAt
		change.WebhookReceivedAt = &receivedAt
	}
	if err := uc.transactionRepo.UpdateTransactionStatus(ctx, tx.TransactionID, change); err != nil {
		return uc.fail(ctx, update, tx.ReservationID, fmt.Errorf("update transaction %s: %w", tx.TransactionID, err))
	}

	operator := update.Operator
	if operator == "" {
		operator = tx.Operator
	}
	uc.events.Emit(ctx, domain.PaymentEvent{
		Type:          domain.EventStatusApplied,
		TransactionID: tx.TransactionID,
		ReservationID: tx.ReservationID,
		AccountCode:   tx.AccountCode,
		Operator:      operator,
		Status:        update.Status,
		Amount:        tx.Amount,
		OccurredAt:    now,
	})

	if tx.ReservationID == "" {
		return domain.WebhookApplied, nil
	}
	switch update.Status {
	case domain.StatusSuccess:
		if _, err := uc.inventory.MarkPaid(ctx, tx.ReservationID); err != nil {
			return uc.fail(ctx, update, tx.ReservationID, err)
		}
	case domain.StatusFailed:
		if _, err := uc.inventory.Release(ctx, tx.ReservationID); err != nil {
			return uc.fail(ctx, update, tx.ReservationID, err)
		}
	}
	return domain.WebhookApplied, nil
}

func (uc *DefaultWebhookUsecase) emitUnknown(ctx context.Context, update domain.StatusUpdate) {
	uc.events.Emit(ctx, domain.PaymentEvent{
		Type:          domain.EventWebhookUnknown,
		TransactionID: update.TransactionID,
		Status:        update.Status,
		Amount:        update.Amount,
		OccurredAt:    uc.now(),
	})
}

func (uc *DefaultWebhookUsecase) fail(ctx context.Context, update domain.StatusUpdate, reservationID string, err error) (domain.WebhookOutcome, error) {
	uc.events.Emit(ctx, domain.PaymentEvent{
		Type:          domain.EventWebhookFailed,
		TransactionID: update.TransactionID,
		ReservationID: reservationID,
		Status:        update.Status,
		Err:           err,
		OccurredAt:    uc.now(),
	})
	return domain.WebhookError, err
}
