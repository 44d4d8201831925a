package logger

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
	"gorm.io/gorm"
)

// WebhookDeliveryEvent is one gateway callback as received, with the
// outcome of its reconciliation.
type WebhookDeliveryEvent struct {
	ID            string `gorm:"primaryKey;size:36"`
	TransactionID string `gorm:"index"`
	Status        string
	Operator      string
	Amount        int64
	RawPayload    string    `gorm:"type:text"`
	Outcome       string    `gorm:"index"`
	Error         string    `gorm:"type:text"`
	ReceivedAt    time.Time `gorm:"index"`
}

func (WebhookDeliveryEvent) TableName() string {
	return "webhook_deliveries"
}

type PGWebhookLogger struct {
	db *gorm.DB
}

func NewPGWebhookLogger(db *gorm.DB) *PGWebhookLogger {
	return &PGWebhookLogger{db: db}
}

func (l *PGWebhookLogger) AutoMigrate() error {
	return l.db.AutoMigrate(&WebhookDeliveryEvent{})
}

func (l *PGWebhookLogger) SaveWebhookDelivery(ctx context.Context, delivery *domain.WebhookDelivery) error {
	event := WebhookDeliveryEvent{
		ID:            delivery.ID,
		TransactionID: delivery.TransactionID,
		Status:        delivery.Status,
		Operator:      delivery.Operator,
		Amount:        delivery.Amount,
		RawPayload:    string(delivery.RawPayload),
		Outcome:       string(delivery.Outcome),
		Error:         delivery.Error,
		ReceivedAt:    delivery.ReceivedAt,
	}
	return l.db.WithContext(ctx).Create(&event).Error
}
