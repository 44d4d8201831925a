package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/LavaJover/shvark-mypvit-relay/internal/app/background"
	"github.com/LavaJover/shvark-mypvit-relay/internal/app/setup"
	"github.com/LavaJover/shvark-mypvit-relay/internal/delivery/grpcapi"
	"github.com/LavaJover/shvark-mypvit-relay/internal/delivery/http/handlers"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the gRPC health service",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := setup.InitializeDependencies(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init dependencies: %w", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			slog.Error("failed to release dependencies", "error", err.Error())
		}
	}()

	ucs, err := setup.InitializeUseCases(deps)
	if err != nil {
		return fmt.Errorf("init usecases: %w", err)
	}

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(handlers.RouterDeps{
		Environment: cfg.Env,
		Payments:    handlers.NewPaymentHandler(ucs.PaymentUsecase),
		Webhooks:    handlers.NewWebhookHandler(ucs.WebhookUsecase),
		Secrets:     handlers.NewSecretHandler(ucs.SecretUsecase, cfg.DefaultAccount()),
		Gatherer:    deps.Registry,
	})
	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	health := grpcapi.NewHealthHandler(0, deps.HealthChecks)
	tasks := background.NewBackgroundTasks(health)
	tasks.StartAll(ctx)

	errc := make(chan error, 2)
	var grpcServer *grpc.Server
	if cfg.GRPCServer.Port != "" {
		grpcServer = grpc.NewServer()
		health.Register(grpcServer)
		lis, err := net.Listen("tcp", net.JoinHostPort(cfg.GRPCServer.Host, cfg.GRPCServer.Port))
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		go func() {
			slog.Info("gRPC server started", "addr", lis.Addr().String())
			if err := grpcServer.Serve(lis); err != nil {
				errc <- fmt.Errorf("grpc serve: %w", err)
			}
		}()
	}

	go func() {
		slog.Info("HTTP server started", "addr", httpServer.Addr, "mode", cfg.MyPVIT.Mode, "storage", cfg.Storage.Driver)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http serve: %w", err)
		}
	}()

	serveErr := awaitStop(ctx, stop, errc)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown", "error", err.Error())
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	tasks.Wait()
	return serveErr
}

// awaitStop blocks until a signal arrives or a server fails. A server
// failure cancels ctx through stop and is returned so the process exits
// non-zero.
func awaitStop(ctx context.Context, stop context.CancelFunc, errc <-chan error) error {
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
		return nil
	case err := <-errc:
		slog.Error("server failed", "error", err.Error())
		stop()
		return err
	}
}
