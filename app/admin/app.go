package admin

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GareBear99/admension/app/admin/types"
	"github.com/GareBear99/admension/pkg/db"
	"github.com/GareBear99/admension/pkg/logging"
	"github.com/GareBear99/admension/pkg/temporal"
	"github.com/GareBear99/admension/pkg/utils"
)

func Initialize(ctx context.Context) *types.App {
	logger, err := logging.New()
	if err != nil {
		// nothing else to do here, we'll just log to stderr'
		panic(err)
	}

	ledgerDbName := utils.Env("LEDGER_DB", "admension_ledger")
	ledgerDb, err := db.NewLedgerDb(ctx, logger, ledgerDbName)
	if err != nil {
		logger.Fatal("Unable to initialize ledger database", zap.Error(err))
	}

	// Ensure the Temporal namespace exists before dialing it.
	if err := temporal.EnsureNamespace(ctx, logger, 7*24*time.Hour); err != nil {
		logger.Fatal("Unable to ensure temporal namespace", zap.Error(err))
	}

	temporalClient, err := temporal.NewClient(ctx, logger)
	if err != nil {
		logger.Fatal("Unable to establish temporal connection", zap.Error(err))
	}

	app := &types.App{
		LedgerDB:       ledgerDb,
		TemporalClient: temporalClient,
		Logger:         logger,
	}

	if err := app.EnsureMonthlySchedule(ctx); err != nil {
		logger.Fatal("Unable to ensure monthly settlement schedule", zap.Error(err))
	}

	return app
}
