package background

import (
	"context"
	"log/slog"
	"sync"

	"github.com/LavaJover/shvark-mypvit-relay/internal/delivery/grpcapi"
)

// BackgroundTasks runs the loops that live as long as the server. There is
// no payment retry loop: a PENDING transaction only moves on a webhook or an
// explicit status query.
type BackgroundTasks struct {
	Health *grpcapi.HealthHandler

	wg sync.WaitGroup
}

func NewBackgroundTasks(health *grpcapi.HealthHandler) *BackgroundTasks {
	return &BackgroundTasks{Health: health}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	if bt.Health != nil {
		bt.wg.Add(1)
		go func() {
			defer bt.wg.Done()
			bt.Health.Run(ctx)
			slog.Info("health probing stopped")
		}()
	}
}

// Wait blocks until every task started by StartAll has returned.
func (bt *BackgroundTasks) Wait() {
	bt.wg.Wait()
}
