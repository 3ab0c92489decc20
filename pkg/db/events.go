package db

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/GareBear99/admension/pkg/db/clickhouse"
	eventmodels "github.com/GareBear99/admension/pkg/db/models/events"
)

// EventsDB is the store backing the raw impression feed. The collector writes
// batches into it; the payout worker reads a settlement period back out.
type EventsDB struct {
	clickhouse.Client
	Name string
}

// DatabaseName returns the events database name.
func (db *EventsDB) DatabaseName() string {
	return db.Name
}

// Close terminates the underlying ClickHouse connection.
func (db *EventsDB) Close() error {
	return db.Db.Close()
}

// Ping verifies the connection.
func (db *EventsDB) Ping(ctx context.Context) error {
	return db.Db.Ping(ctx)
}

// InitializeDB creates the events database and the impressions table.
// Partitioned by month so the settlement read is a single-partition scan and
// retention pruning is a partition drop.
func (db *EventsDB) InitializeDB(ctx context.Context) error {
	if err := db.CreateDbIfNotExists(ctx, db.Name); err != nil {
		return err
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" (
			ts DateTime,
			event_type LowCardinality(String),
			sid_hash String,
			page String,
			slot String,
			device LowCardinality(String),
			adm_code String,
			viewable Bool,
			ivt Bool,
			ingested_at DateTime
		) ENGINE = %s
		PARTITION BY toYYYYMM(ts)
		ORDER BY (event_type, adm_code, ts)
	`, db.Name, eventmodels.ImpressionsTableName, clickhouse.MergeTree)

	if err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", eventmodels.ImpressionsTableName, err)
	}

	return nil
}

// InsertImpressions persists a batch of parsed impressions.
func (db *EventsDB) InsertImpressions(ctx context.Context, impressions []*eventmodels.Impression) error {
	if len(impressions) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (
		ts, event_type, sid_hash, page, slot, device, adm_code, viewable, ivt, ingested_at
	) VALUES`, db.Name, eventmodels.ImpressionsTableName)

	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func(batch driver.Batch) {
		_ = batch.Abort()
	}(batch)

	for _, imp := range impressions {
		if err := batch.Append(
			imp.Ts,
			imp.EventType,
			imp.SidHash,
			imp.Page,
			imp.Slot,
			imp.Device,
			imp.AdmCode,
			imp.Viewable,
			imp.IVT,
			imp.IngestedAt,
		); err != nil {
			return fmt.Errorf("append impression: %w", err)
		}
	}

	return batch.Send()
}

// ImpressionsForPeriod returns every impression with ts in [start, end).
// Filtering down to billable rows (type, viewability, IVT, adm code) is the
// payout core's job; the store hands back the raw window.
func (db *EventsDB) ImpressionsForPeriod(ctx context.Context, start, end time.Time) ([]eventmodels.Impression, error) {
	query := fmt.Sprintf(`
		SELECT ts, event_type, sid_hash, page, slot, device, adm_code, viewable, ivt, ingested_at
		FROM "%s"."%s"
		WHERE ts >= ? AND ts < ?
		ORDER BY ts, adm_code
	`, db.Name, eventmodels.ImpressionsTableName)

	var rows []eventmodels.Impression
	if err := db.Select(ctx, &rows, query, start, end); err != nil {
		return nil, fmt.Errorf("impressions for period: %w", err)
	}

	return rows, nil
}

// UnitCount is a per-recipient billable impression count for a time window.
type UnitCount struct {
	AdmCode string `ch:"adm_code" json:"adm_code"`
	Units   uint64 `ch:"units" json:"units"`
}

// BillableUnitCounts aggregates billable units per recipient inside a window,
// for display/stats only. The authoritative settlement counts come from the
// payout core so that filter semantics live in exactly one place.
func (db *EventsDB) BillableUnitCounts(ctx context.Context, start, end time.Time) ([]UnitCount, error) {
	query := fmt.Sprintf(`
		SELECT upper(adm_code) AS adm_code, count() AS units
		FROM "%s"."%s"
		WHERE ts >= ? AND ts < ?
		  AND event_type IN ('ad_viewable', 'ad_request')
		  AND viewable AND NOT ivt
		  AND adm_code != ''
		GROUP BY adm_code
		ORDER BY units DESC, adm_code
	`, db.Name, eventmodels.ImpressionsTableName)

	var rows []UnitCount
	if err := db.Select(ctx, &rows, query, start, end); err != nil {
		return nil, fmt.Errorf("billable unit counts: %w", err)
	}

	return rows, nil
}

// PruneOldImpressions drops impression partitions past the retention window.
func (db *EventsDB) PruneOldImpressions(ctx context.Context, retention time.Duration) error {
	dropped, err := db.DropOldPartitions(ctx, db.Name, eventmodels.ImpressionsTableName, retention)
	if err != nil {
		return err
	}
	if len(dropped) > 0 {
		db.Logger.Info("Pruned impression partitions",
			zap.Strings("partitions", dropped),
			zap.Duration("retention", retention))
	}
	return nil
}
