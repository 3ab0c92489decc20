package types

import (
	"context"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/GareBear99/admension/pkg/db"
	"github.com/GareBear99/admension/pkg/ingest"
	"github.com/GareBear99/admension/pkg/redis"
)

// RateLimiter is the slice of the ingest limiter the controller needs.
type RateLimiter interface {
	Allow(ctx context.Context, ip string) ingest.Decision
	Status(ctx context.Context, ip string) (ingest.Decision, error)
}

type App struct {
	EventsDB db.EventsStore
	Writer   *ingest.Writer
	Limiter  RateLimiter
	Redis    *redis.Client
	Cron     *cron.Cron
	// Zap Logger
	Logger *zap.Logger
	// Server handles the tracker POSTs from browsers.
	Server *http.Server
}

// Start starts the collector: the batch writer, the retention cron, and the
// HTTP listener. It blocks until the context is canceled.
func (a *App) Start(ctx context.Context) {
	go a.Writer.Run(ctx)
	if a.Cron != nil {
		a.Cron.Start()
	}
	go func() { _ = a.Server.ListenAndServe() }()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.Cron != nil {
		<-a.Cron.Stop().Done()
	}
	_ = a.Server.Shutdown(shutdownCtx)

	if err := a.EventsDB.Close(); err != nil {
		a.Logger.Error("Failed to close database connection", zap.Error(err))
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	time.Sleep(200 * time.Millisecond)
	a.Logger.Info("さようなら!")
}
