package domain

import "time"

type WebhookOutcome string

const (
	WebhookApplied            WebhookOutcome = "applied"
	WebhookUnknownTransaction WebhookOutcome = "unknown_transaction"
	WebhookIgnored            WebhookOutcome = "ignored"
	WebhookError              WebhookOutcome = "error"
)

// WebhookDelivery is the audit record of one gateway callback.
type WebhookDelivery struct {
	ID            string
	TransactionID string
	Status        string
	Operator      string
	Amount        int64
	RawPayload    []byte
	Outcome       WebhookOutcome
	Error         string
	ReceivedAt    time.Time
}
