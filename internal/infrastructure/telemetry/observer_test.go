package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
	"github.com/LavaJover/shvark-mypvit-relay/internal/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	msgs   []domain.Message
	closed bool
}

func (p *recordingPublisher) Publish(_ context.Context, msgs ...domain.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func (p *recordingPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func TestObserverFansOut(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	m := metrics.NewPaymentMetrics(prometheus.NewRegistry())
	pub := &recordingPublisher{}
	o := NewObserver(logger, m, pub)

	o.Emit(context.Background(), domain.PaymentEvent{
		Type:          domain.EventSeatsReleased,
		ReservationID: "R1",
		Count:         3,
		Seats:         domain.SeatCounts{Economy: 2, VIP: 1},
	})
	require.NoError(t, o.Close())

	assert.Contains(t, buf.String(), `"msg":"seats released"`)
	assert.Contains(t, buf.String(), `"reservation_id":"R1"`)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SeatsReleasedTotal.WithLabelValues("Economie")))

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "R1", string(pub.msgs[0].Key))
	var body EventMessage
	require.NoError(t, json.Unmarshal(pub.msgs[0].Value, &body))
	assert.Equal(t, "seats_released", body.Type)
	assert.EqualValues(t, 2, body.SeatsEconomy)
	assert.True(t, pub.closed)
}

func TestObserverWithoutPublisher(t *testing.T) {
	var buf bytes.Buffer
	o := NewObserver(slog.New(slog.NewTextHandler(&buf, nil)), nil, nil)

	o.Emit(context.Background(), domain.PaymentEvent{
		Type:        domain.EventInitiationFailed,
		AccountCode: "ACC",
		Err:         &domain.GatewayError{Kind: domain.ErrGatewayUnavailable, Operation: "initiate_payment"},
	})
	assert.NoError(t, o.Close())
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "gateway unavailable")
}

func TestFailureReason(t *testing.T) {
	assert.Equal(t, "validation", failureReason(domain.NewValidationError("amount")))
	assert.Equal(t, "authentication", failureReason(&domain.GatewayError{Kind: domain.ErrAuthenticationFailed}))
	assert.Equal(t, "internal", failureReason(errors.New("boom")))
}

func TestEncodeKeyFallsBackToTransaction(t *testing.T) {
	msg, err := Encode(domain.PaymentEvent{Type: domain.EventWebhookUnknown, TransactionID: "TX-9"})
	require.NoError(t, err)
	assert.Equal(t, "TX-9", string(msg.Key))
}

func TestObserverEmitAfterClose(t *testing.T) {
	var buf bytes.Buffer
	m := metrics.NewPaymentMetrics(prometheus.NewRegistry())
	pub := &recordingPublisher{}
	o := NewObserver(slog.New(slog.NewJSONHandler(&buf, nil)), m, pub)
	require.NoError(t, o.Close())

	assert.NotPanics(t, func() {
		o.Emit(context.Background(), domain.PaymentEvent{Type: domain.EventSeatsReleased, ReservationID: "R1", Seats: domain.SeatCounts{Economy: 1}})
	})
	assert.Empty(t, pub.msgs)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SeatsReleasedTotal.WithLabelValues("Economie")))
	assert.Contains(t, buf.String(), "observer closed")
}

func TestObserverCloseWhileEmitting(t *testing.T) {
	o := NewObserver(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), nil, &recordingPublisher{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				o.Emit(context.Background(), domain.PaymentEvent{Type: domain.EventSalesPaid, ReservationID: "R1"})
			}
		}()
	}
	require.NoError(t, o.Close())
	wg.Wait()
}
