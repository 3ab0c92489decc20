package collector

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/GareBear99/admension/app/collector/types"
	"github.com/GareBear99/admension/pkg/db"
	"github.com/GareBear99/admension/pkg/ingest"
	"github.com/GareBear99/admension/pkg/logging"
	"github.com/GareBear99/admension/pkg/redis"
	"github.com/GareBear99/admension/pkg/utils"
)

// Initialize initializes the application.
func Initialize(ctx context.Context) *types.App {
	logger, err := logging.New()
	if err != nil {
		// nothing else to do here, we'll just log to stderr'
		panic(err)
	}

	eventsDbName := utils.Env("EVENTS_DB", "admension_events")
	eventsDb, eventsDbErr := db.NewEventsDb(ctx, logger, eventsDbName)
	if eventsDbErr != nil {
		logger.Fatal("Unable to initialize events database", zap.Error(eventsDbErr))
	}

	redisClient, redisErr := redis.NewClient(ctx, logger)
	if redisErr != nil {
		logger.Fatal("Unable to connect to Redis, rate limiting requires it", zap.Error(redisErr))
	}

	app := &types.App{
		EventsDB: eventsDb,
		Writer:   ingest.NewWriter(logger, eventsDb),
		Limiter:  ingest.NewLimiter(logger, redisClient, ingest.DefaultLimits()),
		Redis:    redisClient,
		Logger:   logger,
	}

	// Raw impressions feed ledger runs for a bounded number of trailing
	// months; older partitions are dead weight.
	retentionDays := utils.EnvInt("EVENTS_RETENTION_DAYS", 120)
	retention := time.Duration(retentionDays) * 24 * time.Hour

	c := cron.New()
	if _, cronErr := c.AddFunc(utils.Env("RETENTION_CRON", "0 4 * * *"), func() {
		pruneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := eventsDb.PruneOldImpressions(pruneCtx, retention); err != nil {
			logger.Error("Retention prune failed", zap.Error(err))
		}
	}); cronErr != nil {
		logger.Fatal("Unable to schedule retention job", zap.Error(cronErr))
	}
	app.Cron = c

	return app
}
