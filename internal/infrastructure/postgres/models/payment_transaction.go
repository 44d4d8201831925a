package models

import "time"

type PaymentTransactionModel struct {
	ID                  string `gorm:"primaryKey;size:36"`
	ReservationID       string `gorm:"index;not null"`
	TransactionID       string `gorm:"uniqueIndex;not null"`
	MerchantReferenceID string
	Reference           string `gorm:"size:15"`
	AccountCode         string `gorm:"size:64"`
	Amount              int64  `gorm:"not null"`
	PhoneNumber         string `gorm:"size:32"`
	Operator            string
	Status              string `gorm:"index;not null"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
	WebhookReceivedAt   *time.Time
}

func (PaymentTransactionModel) TableName() string {
	return "payment_transactions"
}
