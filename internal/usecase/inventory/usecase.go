package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
)

// InventoryUsecase applies the booking side effects of a terminal payment.
// Both operations may run any number of times for the same reservation.
type InventoryUsecase interface {
	MarkPaid(ctx context.Context, reservationID string) (*domain.MarkPaidResult, error)
	Release(ctx context.Context, reservationID string) (*domain.ReleaseResult, error)
}

type DefaultInventoryUsecase struct {
	inventoryRepo domain.InventoryRepository
	events        domain.EventSink
	now           func() time.Time
}

func NewDefaultInventoryUsecase(inventoryRepo domain.InventoryRepository, events domain.EventSink) *DefaultInventoryUsecase {
	if events == nil {
		events = domain.NopEventSink{}
	}
	return &DefaultInventoryUsecase{
		inventoryRepo: inventoryRepo,
		events:        events,
		now:           time.Now,
	}
}

func (uc *DefaultInventoryUsecase) MarkPaid(ctx context.Context, reservationID string) (*domain.MarkPaidResult, error) {
	now := uc.now()
	result, err := uc.inventoryRepo.MarkReservationPaid(ctx, reservationID, now)
	if err != nil {
		return nil, fmt.Errorf("mark reservation %s paid: %w", reservationID, err)
	}

	if result.Marked > 0 {
		uc.events.Emit(ctx, domain.PaymentEvent{
			Type:          domain.EventSalesPaid,
			ReservationID: reservationID,
			Count:         result.Marked,
			OccurredAt:    now,
		})
	}
	// Seats of cancelled sales are already back on sale, so they stay
	// cancelled and the conflict is reported instead.
	if result.SkippedCanceled > 0 {
		uc.events.Emit(ctx, domain.PaymentEvent{
			Type:          domain.EventPaidAfterCancelation,
			ReservationID: reservationID,
			Count:         result.SkippedCanceled,
			OccurredAt:    now,
		})
	}
	return result, nil
}

func (uc *DefaultInventoryUsecase) Release(ctx context.Context, reservationID string) (*domain.ReleaseResult, error) {
	now := uc.now()
	result, err := uc.inventoryRepo.ReleaseReservation(ctx, reservationID, domain.ReleaseReasonPaymentFailed, now)
	if err != nil {
		return nil, fmt.Errorf("release reservation %s: %w", reservationID, err)
	}

	if result.SalesCancelled > 0 {
		uc.events.Emit(ctx, domain.PaymentEvent{
			Type:          domain.EventSeatsReleased,
			ReservationID: reservationID,
			Count:         result.SalesCancelled,
			Seats:         result.SeatsReleased(),
			OccurredAt:    now,
		})
	}
	return result, nil
}
