package grpcapi

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name probes use to ask for the relay itself. The empty
// name reports the same status.
const ServiceName = "payment.relay.v1.PaymentRelay"

// HealthCheck reports whether a dependency the relay cannot work without is
// reachable.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	server   *health.Server
	checks   map[string]HealthCheck
	interval time.Duration
}

func NewHealthHandler(interval time.Duration, checks map[string]HealthCheck) *HealthHandler {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	h := &HealthHandler{
		server:   health.NewServer(),
		checks:   checks,
		interval: interval,
	}
	h.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

func (h *HealthHandler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

// Run probes the checks until ctx is done, then reports NOT_SERVING for
// good.
func (h *HealthHandler) Run(ctx context.Context) {
	h.Probe(ctx)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}

func (h *HealthHandler) Probe(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	for name, check := range h.checks {
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := check(checkCtx)
		cancel()
		if err != nil {
			slog.Warn("health check failed", "check", name, "error", err.Error())
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	h.setStatus(status)
}

func (h *HealthHandler) Check(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := h.server.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.Status, nil
}

func (h *HealthHandler) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
}
