package activity

import (
	"go.uber.org/zap"

	"github.com/GareBear99/admension/pkg/db"
	"github.com/GareBear99/admension/pkg/payout"
	"github.com/GareBear99/admension/pkg/redis"
	"github.com/GareBear99/admension/pkg/temporal"
)

type Context struct {
	Logger         *zap.Logger
	EventsDB       db.EventsStore
	LedgerDB       db.LedgerStore
	Redis          *redis.Client
	TemporalClient *temporal.Client
	Config         payout.Config
}
