package domain

import (
	"context"
	"time"
)

// SecretRepository persists one Secret per merchant operation account.
// GetSecret returns ErrNotFound when the account has no secret yet.
type SecretRepository interface {
	GetSecret(ctx context.Context, accountCode string) (*Secret, error)
	SaveSecret(ctx context.Context, secret *Secret) error
}

type TransactionRepository interface {
	CreateTransaction(ctx context.Context, tx *PaymentTransaction) error
	GetTransactionByTransactionID(ctx context.Context, transactionID string) (*PaymentTransaction, error)
	UpdateTransactionStatus(ctx context.Context, transactionID string, upd TransactionStatusChange) error
}

// TransactionStatusChange is applied as-is by the repository. An empty
// Operator keeps the stored one; a nil WebhookReceivedAt keeps the stored one.
type TransactionStatusChange struct {
	Status            TransactionStatus
	Operator          string
	WebhookReceivedAt *time.Time
	UpdatedAt         time.Time
}

// InventoryRepository applies the compensating mutations on the booking
// collections. Each call is one atomic batch.
type InventoryRepository interface {
	MarkReservationPaid(ctx context.Context, reservationID string, at time.Time) (*MarkPaidResult, error)
	ReleaseReservation(ctx context.Context, reservationID, reason string, at time.Time) (*ReleaseResult, error)
}

type WebhookLogRepository interface {
	SaveWebhookDelivery(ctx context.Context, delivery *WebhookDelivery) error
}
