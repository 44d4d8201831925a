package telemetry

import (
	"encoding/json"
	"time"

	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
)

// EventMessage is the JSON body published for every payment event.
type EventMessage struct {
	Type          string    `json:"type"`
	TransactionID string    `json:"transaction_id,omitempty"`
	ReservationID string    `json:"reservation_id,omitempty"`
	AccountCode   string    `json:"account_code,omitempty"`
	Operator      string    `json:"operator,omitempty"`
	Status        string    `json:"status,omitempty"`
	Amount        int64     `json:"amount,omitempty"`
	Count         int       `json:"count,omitempty"`
	SeatsEconomy  int64     `json:"seats_economy,omitempty"`
	SeatsVIP      int64     `json:"seats_vip,omitempty"`
	DurationMs    int64     `json:"duration_ms,omitempty"`
	Error         string    `json:"error,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewEventMessage(e domain.PaymentEvent) EventMessage {
	msg := EventMessage{
		Type:          string(e.Type),
		TransactionID: e.TransactionID,
		ReservationID: e.ReservationID,
		AccountCode:   e.AccountCode,
		Operator:      e.Operator,
		Status:        string(e.Status),
		Amount:        e.Amount,
		Count:         e.Count,
		SeatsEconomy:  e.Seats.Economy,
		SeatsVIP:      e.Seats.VIP,
		DurationMs:    e.Duration.Milliseconds(),
		OccurredAt:    e.OccurredAt,
	}
	if e.Err != nil {
		msg.Error = e.Err.Error()
	}
	return msg
}

// Encode builds the broker message. The key is the reservation when known so
// that every event of one booking is ordered on the same partition.
func Encode(e domain.PaymentEvent) (domain.Message, error) {
	value, err := json.Marshal(NewEventMessage(e))
	if err != nil {
		return domain.Message{}, err
	}
	key := e.ReservationID
	if key == "" {
		key = e.TransactionID
	}
	if key == "" {
		key = e.AccountCode
	}
	return domain.Message{Key: []byte(key), Value: value}, nil
}
