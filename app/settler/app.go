package workersettler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"go.temporal.io/sdk/worker"

	"github.com/GareBear99/admension/pkg/db"
	"github.com/GareBear99/admension/pkg/logging"
	"github.com/GareBear99/admension/pkg/payout"
	"github.com/GareBear99/admension/pkg/redis"
	"github.com/GareBear99/admension/pkg/settler/activity"
	"github.com/GareBear99/admension/pkg/settler/workflow"
	"github.com/GareBear99/admension/pkg/temporal"
	"github.com/GareBear99/admension/pkg/utils"
)

type App struct {
	Worker         worker.Worker
	TemporalClient *temporal.Client
	Logger         *zap.Logger
}

// Start starts the worker and blocks until the context is canceled.
func (a *App) Start(ctx context.Context) {
	err := a.Worker.Start()
	if err != nil {
		a.Logger.Fatal("Unable to start worker", zap.Error(err))
	}
	<-ctx.Done()
	a.Stop()
}

// Stop stops the worker.
func (a *App) Stop() {
	a.Worker.Stop()
	time.Sleep(200 * time.Millisecond)
	a.Logger.Info("さようなら!")
}

// Initialize initializes the application.
func Initialize(ctx context.Context) *App {
	logger, err := logging.New()
	if err != nil {
		// nothing else to do here, we'll just log to stderr'
		panic(err)
	}

	eventsDb, ledgerDb, storesErr := db.NewStores(ctx, logger)
	if storesErr != nil {
		logger.Fatal("Unable to initialize databases", zap.Error(storesErr))
	}

	temporalClient, err := temporal.NewClient(ctx, logger)
	if err != nil {
		logger.Fatal("Unable to establish temporal connection", zap.Error(err))
	}

	// Ledger notifications are best effort; the worker runs without Redis.
	var redisClient *redis.Client
	if utils.EnvBool("REDIS_ENABLED", true) {
		redisClient, err = redis.NewClient(ctx, logger)
		if err != nil {
			logger.Warn("Failed to initialize Redis client, ledger notifications disabled", zap.Error(err))
			redisClient = nil
		}
	}

	activityContext := &activity.Context{
		Logger:         logger,
		EventsDB:       eventsDb,
		LedgerDB:       ledgerDb,
		Redis:          redisClient,
		TemporalClient: temporalClient,
		Config:         payout.ConfigFromEnv(),
	}
	workflowContext := workflow.Context{
		ActivityContext: activityContext,
	}

	wkr := worker.New(
		temporalClient.TClient,
		temporalClient.SettlementQueue,
		worker.Options{},
	)

	// Register the workflows
	wkr.RegisterWorkflow(workflowContext.SettlementWorkflow)
	wkr.RegisterWorkflow(workflowContext.RecomputeWorkflow)
	// Register all the activities
	wkr.RegisterActivity(activityContext.ComputeLedger)
	wkr.RegisterActivity(activityContext.RecomputeTrailing)

	return &App{
		Worker:         wkr,
		TemporalClient: temporalClient,
		Logger:         logger,
	}
}
