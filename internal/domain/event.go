package domain

import (
	"context"
	"time"
)

type EventType string

const (
	EventPaymentInitiated     EventType = "payment_initiated"
	EventInitiationFailed     EventType = "payment_initiation_failed"
	EventSecretRenewed        EventType = "secret_renewed"
	EventSecretRenewalFailed  EventType = "secret_renewal_failed"
	EventSecretReceived       EventType = "secret_received"
	EventStatusApplied        EventType = "status_applied"
	EventWebhookUnknown       EventType = "webhook_unknown_transaction"
	EventWebhookFailed        EventType = "webhook_processing_failed"
	EventSalesPaid            EventType = "sales_paid"
	EventSeatsReleased        EventType = "seats_released"
	EventPaidAfterCancelation EventType = "paid_after_cancelation"
)

// PaymentEvent is a structured notification emitted by the core components.
type PaymentEvent struct {
	Type          EventType
	TransactionID string
	ReservationID string
	AccountCode   string
	Operator      string
	Status        TransactionStatus
	Amount        int64
	Count         int
	Seats         SeatCounts
	Duration      time.Duration
	Err           error
	OccurredAt    time.Time
}

// EventSink receives payment events. Implementations must not block the
// caller on slow downstream systems.
type EventSink interface {
	Emit(ctx context.Context, event PaymentEvent)
}

type NopEventSink struct{}

func (NopEventSink) Emit(context.Context, PaymentEvent) {}
