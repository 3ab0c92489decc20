package db

import (
	"context"

	"github.com/GareBear99/admension/pkg/db/clickhouse"
	"github.com/GareBear99/admension/pkg/utils"
	"go.uber.org/zap"
)

// NewStores creates the two ClickHouse-backed stores the apps share: the
// impression feed written by the collector and the settlement ledger written
// by the payout worker and admin API.
func NewStores(ctx context.Context, logger *zap.Logger) (*EventsDB, *LedgerDB, error) {
	eventsDbName := utils.Env("EVENTS_DB", "admension_events")
	ledgerDbName := utils.Env("LEDGER_DB", "admension_ledger")

	logger.Info("Creating databases",
		zap.String("eventsDbName", eventsDbName),
		zap.String("ledgerDbName", ledgerDbName))

	eventsDb, err := NewEventsDb(ctx, logger, eventsDbName)
	if err != nil {
		return nil, nil, err
	}

	ledgerDb, err := NewLedgerDb(ctx, logger, ledgerDbName)
	if err != nil {
		return nil, nil, err
	}

	return eventsDb, ledgerDb, nil
}

// NewEventsDb creates the impression-feed store.
func NewEventsDb(ctx context.Context, logger *zap.Logger, dbName string) (*EventsDB, error) {
	client, err := clickhouse.New(ctx, logger.With(zap.String("component", "events_db")))
	if err != nil {
		return nil, err
	}

	store := &EventsDB{Client: client, Name: clickhouse.SanitizeName(dbName)}
	if err := store.InitializeDB(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// NewLedgerDb creates the settlement-ledger store.
func NewLedgerDb(ctx context.Context, logger *zap.Logger, dbName string) (*LedgerDB, error) {
	client, err := clickhouse.New(ctx, logger.With(zap.String("component", "ledger_db")))
	if err != nil {
		return nil, err
	}

	store := &LedgerDB{Client: client, Name: clickhouse.SanitizeName(dbName)}
	if err := store.InitializeDB(ctx); err != nil {
		return nil, err
	}

	return store, nil
}
