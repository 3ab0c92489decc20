package types

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/GareBear99/admension/pkg/db"
	"github.com/GareBear99/admension/pkg/redis"
)

type App struct {
	EventsDB    db.EventsStore
	LedgerDB    db.LedgerStore
	RedisClient *redis.Client
	// Zap Logger
	Logger *zap.Logger
	// Server represents the HTTP server instance used to handle incoming client requests and manage HTTP routes.
	Server *http.Server
}

// Start starts the application.
func (a *App) Start(ctx context.Context) {
	go func() { _ = a.Server.ListenAndServe() }()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.LedgerDB.Close(); err != nil {
		a.Logger.Error("Failed to close database connection", zap.Error(err))
	}
	if err := a.EventsDB.Close(); err != nil {
		a.Logger.Error("Failed to close database connection", zap.Error(err))
	}

	_ = a.Server.Shutdown(shutdownCtx)
	time.Sleep(200 * time.Millisecond)
	a.Logger.Info("さようなら!")
}
