package domain

import (
	"strings"
	"time"
)

type TransactionStatus string

const (
	StatusPending TransactionStatus = "PENDING"
	StatusSuccess TransactionStatus = "SUCCESS"
	StatusFailed  TransactionStatus = "FAILED"
)

// ParseTransactionStatus normalizes a status reported by the gateway.
func ParseTransactionStatus(s string) TransactionStatus {
	return TransactionStatus(strings.ToUpper(strings.TrimSpace(s)))
}

func (s TransactionStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

type PaymentTransaction struct {
	ID                  string
	ReservationID       string
	TransactionID       string
	MerchantReferenceID string
	Reference           string
	AccountCode         string
	Amount              int64
	PhoneNumber         string
	Operator            string
	Status              TransactionStatus
	CreatedAt           time.Time
	UpdatedAt           time.Time
	WebhookReceivedAt   *time.Time
}

// StatusUpdate is the canonical shape of a status notification, whatever
// path it came through (webhook delivery or explicit status query).
type StatusUpdate struct {
	TransactionID       string
	MerchantReferenceID string
	Status              TransactionStatus
	Amount              int64
	Operator            string
	ReceivedAt          time.Time
	FromWebhook         bool
}
