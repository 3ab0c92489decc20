package types

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/GareBear99/admension/pkg/db"
	"github.com/GareBear99/admension/pkg/settler/workflow"
	"github.com/GareBear99/admension/pkg/temporal"
)

type App struct {
	LedgerDB db.LedgerStore

	// Temporal initialization
	TemporalClient *temporal.Client

	// Zap Logger
	Logger *zap.Logger
	// Server represents the HTTP server instance used to handle incoming client requests and manage HTTP routes.
	Server *http.Server
}

// User is an admin login backed by a bcrypt hash.
type User struct {
	Username string `json:"username"`
	Hash     []byte `json:"hash"`
	Role     string `json:"role"`
}

// EnsureMonthlySchedule creates the monthly settlement schedule if it does
// not already exist. The schedule starts SettlementWorkflow with an empty
// tag, which resolves to the just-completed month at run time.
func (a *App) EnsureMonthlySchedule(ctx context.Context) error {
	id := a.TemporalClient.MonthlyScheduleID
	h := a.TemporalClient.TSClient.GetHandle(ctx, id)
	if _, err := h.Describe(ctx); err == nil {
		a.Logger.Info("Monthly settlement schedule already exists", zap.String("id", id))
		return nil
	} else {
		var notFound *serviceerror.NotFound
		if !errors.As(err, &notFound) {
			return err
		}
	}

	a.Logger.Info("Creating monthly settlement schedule", zap.String("id", id))
	_, err := a.TemporalClient.TSClient.Create(ctx, client.ScheduleOptions{
		ID:   id,
		Spec: a.TemporalClient.MonthlySpec(),
		Action: &client.ScheduleWorkflowAction{
			ID:        "settlement-monthly",
			Workflow:  workflow.SettlementWorkflowName,
			Args:      []interface{}{""},
			TaskQueue: a.TemporalClient.SettlementQueue,
		},
	})
	return err
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

	_ = a.Server.Shutdown(shutdownCtx)
	time.Sleep(200 * time.Millisecond)
	a.Logger.Info("さようなら!")
}
