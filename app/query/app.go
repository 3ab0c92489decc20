package query

import (
	"context"

	"go.uber.org/zap"

	"github.com/GareBear99/admension/app/query/types"
	"github.com/GareBear99/admension/pkg/db"
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

	eventsDb, ledgerDb, storesErr := db.NewStores(ctx, logger)
	if storesErr != nil {
		logger.Fatal("Unable to initialize databases", zap.Error(storesErr))
	}

	// Initialize Redis client for real-time WebSocket events (optional)
	var redisClient *redis.Client
	if utils.EnvBool("REDIS_ENABLED", false) {
		redisClient, err = redis.NewClient(ctx, logger)
		if err != nil {
			logger.Warn("Failed to initialize Redis client - WebSocket real-time events will be disabled",
				zap.Error(err))
			redisClient = nil
		} else {
			logger.Info("Redis client initialized for WebSocket real-time events")
		}
	} else {
		logger.Info("Redis disabled - WebSocket real-time events will not be available")
	}

	app := &types.App{
		EventsDB:    eventsDb,
		LedgerDB:    ledgerDb,
		RedisClient: redisClient,
		Logger:      logger,
	}

	return app
}
