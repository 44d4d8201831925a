package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "payment_relay"

// PaymentMetrics holds every collector of the relay.
type PaymentMetrics struct {
	// Initiation
	PaymentsInitiatedTotal       *prometheus.CounterVec
	PaymentsInitiatedAmountTotal *prometheus.CounterVec
	InitiationFailuresTotal      *prometheus.CounterVec
	InitiationDuration           *prometheus.HistogramVec

	// Secrets
	SecretRenewalsTotal  *prometheus.CounterVec
	SecretsReceivedTotal prometheus.Counter

	// Reconciliation
	StatusUpdatesTotal   *prometheus.CounterVec
	WebhookUnknownTotal  prometheus.Counter
	WebhookErrorsTotal   prometheus.Counter
	SalesPaidTotal       prometheus.Counter
	PaidAfterCancelTotal prometheus.Counter
	SeatsReleasedTotal   *prometheus.CounterVec

	// Gateway round trips
	GatewayRequestsTotal   *prometheus.CounterVec
	GatewayRequestDuration *prometheus.HistogramVec
}

// NewPaymentMetrics registers the collectors on reg.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	factory := promauto.With(reg)
	return &PaymentMetrics{
		PaymentsInitiatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payments_initiated_total",
				Help:      "Payments accepted by the gateway and stored as PENDING",
			},
			[]string{"account", "operator"},
		),
		PaymentsInitiatedAmountTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payments_initiated_amount_total",
				Help:      "Sum of initiated amounts in minor units",
			},
			[]string{"account"},
		),
		InitiationFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payment_initiation_failures_total",
				Help:      "Initiation attempts that stored no transaction",
			},
			[]string{"account", "reason"},
		),
		InitiationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "payment_initiation_duration_seconds",
				Help:      "Time from request to stored transaction",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"result"},
		),
		SecretRenewalsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "secret_renewals_total",
				Help:      "Gateway secret renewals by outcome",
			},
			[]string{"account", "result"},
		),
		SecretsReceivedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "secrets_received_total",
				Help:      "Secrets pushed by the gateway",
			},
		),
		StatusUpdatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "status_updates_total",
				Help:      "Transaction status updates applied",
			},
			[]string{"status"},
		),
		WebhookUnknownTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_unknown_transactions_total",
				Help:      "Status notifications for transactions this relay never stored",
			},
		),
		WebhookErrorsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_errors_total",
				Help:      "Status notifications that failed during reconciliation",
			},
		),
		SalesPaidTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sales_paid_total",
				Help:      "Sale records marked paid",
			},
		),
		PaidAfterCancelTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sales_paid_after_cancel_total",
				Help:      "Cancelled sale records whose payment succeeded later",
			},
		),
		SeatsReleasedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "seats_released_total",
				Help:      "Seats given back to trips after failed payments",
			},
			[]string{"classe"},
		),
		GatewayRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gateway_requests_total",
				Help:      "Gateway HTTP calls by operation and status code (0 when no response)",
			},
			[]string{"operation", "code"},
		),
		GatewayRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "gateway_request_duration_seconds",
				Help:      "Gateway HTTP call latency",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"operation"},
		),
	}
}

func (m *PaymentMetrics) RecordPaymentInitiated(account, operator string, amount int64, d time.Duration) {
	m.PaymentsInitiatedTotal.WithLabelValues(account, operator).Inc()
	m.PaymentsInitiatedAmountTotal.WithLabelValues(account).Add(float64(amount))
	m.InitiationDuration.WithLabelValues("success").Observe(d.Seconds())
}

func (m *PaymentMetrics) RecordInitiationFailed(account, reason string, d time.Duration) {
	m.InitiationFailuresTotal.WithLabelValues(account, reason).Inc()
	m.InitiationDuration.WithLabelValues("failure").Observe(d.Seconds())
}

func (m *PaymentMetrics) RecordSecretRenewal(account string, ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	m.SecretRenewalsTotal.WithLabelValues(account, result).Inc()
}

func (m *PaymentMetrics) RecordSecretReceived() {
	m.SecretsReceivedTotal.Inc()
}

func (m *PaymentMetrics) RecordStatusApplied(status string) {
	m.StatusUpdatesTotal.WithLabelValues(status).Inc()
}

func (m *PaymentMetrics) RecordWebhookUnknown() {
	m.WebhookUnknownTotal.Inc()
}

func (m *PaymentMetrics) RecordWebhookError() {
	m.WebhookErrorsTotal.Inc()
}

func (m *PaymentMetrics) RecordSalesPaid(count int) {
	m.SalesPaidTotal.Add(float64(count))
}

func (m *PaymentMetrics) RecordPaidAfterCancel(count int) {
	m.PaidAfterCancelTotal.Add(float64(count))
}

func (m *PaymentMetrics) RecordSeatsReleased(economy, vip int64) {
	m.SeatsReleasedTotal.WithLabelValues("Economie").Add(float64(economy))
	m.SeatsReleasedTotal.WithLabelValues("VIP").Add(float64(vip))
}

// ObserveGatewayCall implements client.CallObserver.
func (m *PaymentMetrics) ObserveGatewayCall(operation string, statusCode int, d time.Duration) {
	m.GatewayRequestsTotal.WithLabelValues(operation, strconv.Itoa(statusCode)).Inc()
	m.GatewayRequestDuration.WithLabelValues(operation).Observe(d.Seconds())
}
