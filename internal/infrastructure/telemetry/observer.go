package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
	"github.com/LavaJover/shvark-mypvit-relay/internal/infrastructure/metrics"
)

const (
	publishQueueSize = 256
	publishTimeout   = 5 * time.Second
)

// Observer is the domain.EventSink of the relay. It logs every event,
// records it in the metrics and hands it to the publisher on a background
// goroutine so that Emit never waits on the broker.
type Observer struct {
	logger    *slog.Logger
	metrics   *metrics.PaymentMetrics
	publisher domain.PublisherPort

	// mu guards queue against Close: Emit holds it shared while sending.
	mu        sync.RWMutex
	closed    bool
	queue     chan domain.PaymentEvent
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewObserver wires the sinks. metrics and publisher may be nil.
func NewObserver(logger *slog.Logger, m *metrics.PaymentMetrics, publisher domain.PublisherPort) *Observer {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Observer{logger: logger, metrics: m, publisher: publisher}
	if publisher != nil {
		o.queue = make(chan domain.PaymentEvent, publishQueueSize)
		o.wg.Add(1)
		go o.publishLoop()
	}
	return o
}

func (o *Observer) Emit(ctx context.Context, e domain.PaymentEvent) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	o.log(ctx, e)
	if o.metrics != nil {
		o.record(e)
	}
	if o.queue == nil {
		return
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		o.logger.Warn("observer closed, event not published", "type", string(e.Type), "transaction_id", e.TransactionID)
		return
	}
	select {
	case o.queue <- e:
	default:
		o.logger.Warn("event queue full, dropping event", "type", string(e.Type), "transaction_id", e.TransactionID)
	}
}

// Close stops accepting events, publishes what is queued and closes the
// publisher. Events emitted afterwards are still logged and counted.
func (o *Observer) Close() error {
	var err error
	o.closeOnce.Do(func() {
		if o.queue == nil {
			return
		}
		o.mu.Lock()
		o.closed = true
		close(o.queue)
		o.mu.Unlock()
		o.wg.Wait()
		err = o.publisher.Close()
	})
	return err
}

func (o *Observer) publishLoop() {
	defer o.wg.Done()
	for e := range o.queue {
		msg, err := Encode(e)
		if err != nil {
			o.logger.Error("failed to encode event", "type", string(e.Type), "error", err.Error())
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := o.publisher.Publish(ctx, msg); err != nil {
			o.logger.Error("failed to publish event", "type", string(e.Type), "error", err.Error())
		}
		cancel()
	}
}

func (o *Observer) log(ctx context.Context, e domain.PaymentEvent) {
	attrs := []slog.Attr{slog.String("event", string(e.Type))}
	if e.TransactionID != "" {
		attrs = append(attrs, slog.String("transaction_id", e.TransactionID))
	}
	if e.ReservationID != "" {
		attrs = append(attrs, slog.String("reservation_id", e.ReservationID))
	}
	if e.AccountCode != "" {
		attrs = append(attrs, slog.String("account", e.AccountCode))
	}
	if e.Operator != "" {
		attrs = append(attrs, slog.String("operator", e.Operator))
	}
	if e.Status != "" {
		attrs = append(attrs, slog.String("status", string(e.Status)))
	}
	if e.Amount != 0 {
		attrs = append(attrs, slog.Int64("amount", e.Amount))
	}
	if e.Count != 0 {
		attrs = append(attrs, slog.Int("count", e.Count))
	}
	if e.Seats.Total() != 0 {
		attrs = append(attrs, slog.Int64("seats_economy", e.Seats.Economy), slog.Int64("seats_vip", e.Seats.VIP))
	}
	if e.Duration != 0 {
		attrs = append(attrs, slog.Duration("duration", e.Duration))
	}
	if e.Err != nil {
		attrs = append(attrs, slog.String("error", e.Err.Error()))
	}
	o.logger.LogAttrs(ctx, levelOf(e), message(e.Type), attrs...)
}

func (o *Observer) record(e domain.PaymentEvent) {
	switch e.Type {
	case domain.EventPaymentInitiated:
		o.metrics.RecordPaymentInitiated(e.AccountCode, e.Operator, e.Amount, e.Duration)
	case domain.EventInitiationFailed:
		o.metrics.RecordInitiationFailed(e.AccountCode, failureReason(e.Err), e.Duration)
	case domain.EventSecretRenewed:
		o.metrics.RecordSecretRenewal(e.AccountCode, true)
	case domain.EventSecretRenewalFailed:
		o.metrics.RecordSecretRenewal(e.AccountCode, false)
	case domain.EventSecretReceived:
		o.metrics.RecordSecretReceived()
	case domain.EventStatusApplied:
		o.metrics.RecordStatusApplied(string(e.Status))
	case domain.EventWebhookUnknown:
		o.metrics.RecordWebhookUnknown()
	case domain.EventWebhookFailed:
		o.metrics.RecordWebhookError()
	case domain.EventSalesPaid:
		o.metrics.RecordSalesPaid(e.Count)
	case domain.EventPaidAfterCancelation:
		o.metrics.RecordPaidAfterCancel(e.Count)
	case domain.EventSeatsReleased:
		o.metrics.RecordSeatsReleased(e.Seats.Economy, e.Seats.VIP)
	}
}

func levelOf(e domain.PaymentEvent) slog.Level {
	switch e.Type {
	case domain.EventInitiationFailed, domain.EventSecretRenewalFailed, domain.EventWebhookFailed:
		return slog.LevelError
	case domain.EventWebhookUnknown, domain.EventPaidAfterCancelation:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func message(t domain.EventType) string {
	switch t {
	case domain.EventPaymentInitiated:
		return "payment initiated"
	case domain.EventInitiationFailed:
		return "payment initiation failed"
	case domain.EventSecretRenewed:
		return "gateway secret renewed"
	case domain.EventSecretRenewalFailed:
		return "gateway secret renewal failed"
	case domain.EventSecretReceived:
		return "gateway secret received"
	case domain.EventStatusApplied:
		return "transaction status applied"
	case domain.EventWebhookUnknown:
		return "status for unknown transaction"
	case domain.EventWebhookFailed:
		return "status reconciliation failed"
	case domain.EventSalesPaid:
		return "sales marked paid"
	case domain.EventPaidAfterCancelation:
		return "payment succeeded for cancelled sales"
	case domain.EventSeatsReleased:
		return "seats released"
	default:
		return string(t)
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidationFailed):
		return "validation"
	case errors.Is(err, domain.ErrAuthenticationFailed):
		return "authentication"
	case errors.Is(err, domain.ErrCallbackNotActivated):
		return "callback_not_activated"
	case errors.Is(err, domain.ErrGatewayUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrGatewayRejected):
		return "rejected"
	case errors.Is(err, domain.ErrConfiguration):
		return "configuration"
	default:
		return "internal"
	}
}
