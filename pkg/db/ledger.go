package db

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/GareBear99/admension/pkg/db/clickhouse"
	ledgermodels "github.com/GareBear99/admension/pkg/db/models/ledger"
)

// LedgerDB is the store backing settlements, the wallet directory, and the
// computed payout ledgers. All tables are ReplacingMergeTree keyed by their
// natural key with a version column, so re-running a period or re-submitting
// a wallet is an upsert.
type LedgerDB struct {
	clickhouse.Client
	Name string
}

// DatabaseName returns the ledger database name.
func (db *LedgerDB) DatabaseName() string {
	return db.Name
}

// Close terminates the underlying ClickHouse connection.
func (db *LedgerDB) Close() error {
	return db.Db.Close()
}

// Ping verifies the connection.
func (db *LedgerDB) Ping(ctx context.Context) error {
	return db.Db.Ping(ctx)
}

// InitializeDB creates the ledger database and its tables.
func (db *LedgerDB) InitializeDB(ctx context.Context) error {
	if err := db.CreateDbIfNotExists(ctx, db.Name); err != nil {
		return err
	}

	queries := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS "%s"."%s" (
				tag String,
				received_revenue_usd Float64,
				noted_by String,
				noted_at DateTime,
				version UInt64
			) ENGINE = %s(version)
			ORDER BY tag
		`, db.Name, ledgermodels.SettlementsTableName, clickhouse.ReplacingMergeTree),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS "%s"."%s" (
				adm_code String,
				chain LowCardinality(String),
				address String,
				submitted_at DateTime,
				version UInt64
			) ENGINE = %s(version)
			ORDER BY adm_code
		`, db.Name, ledgermodels.WalletsTableName, clickhouse.ReplacingMergeTree),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS "%s"."%s" (
				tag String,
				generated_at DateTime,
				pool_usd Float64,
				total_units UInt64,
				received_revenue_usd Float64,
				hard_cap_usd Float64,
				split_pct Float64,
				wallet_cap_pct Float64,
				creator_adm_code String,
				ramp_active Bool,
				zero_payout Bool,
				full_rate_pool_usd Float64,
				diverted_usd Float64,
				redirected_usd Float64,
				version UInt64
			) ENGINE = %s(version)
			ORDER BY tag
		`, db.Name, ledgermodels.LedgersTableName, clickhouse.ReplacingMergeTree),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS "%s"."%s" (
				tag String,
				position UInt32,
				adm_code String,
				wallet String,
				units UInt64,
				share Float64,
				amount_usd Float64,
				capped Bool,
				cap_reason LowCardinality(String),
				version UInt64
			) ENGINE = %s(version)
			ORDER BY (tag, position)
		`, db.Name, ledgermodels.LedgerRowsTableName, clickhouse.ReplacingMergeTree),
	}

	for _, query := range queries {
		if err := db.Exec(ctx, query); err != nil {
			return fmt.Errorf("initialize ledger db: %w", err)
		}
	}

	return nil
}

// UpsertSettlement records (or replaces) the verified revenue for a period.
func (db *LedgerDB) UpsertSettlement(ctx context.Context, s *ledgermodels.Settlement) error {
	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (tag, received_revenue_usd, noted_by, noted_at, version)
		VALUES (?, ?, ?, ?, ?)`, db.Name, ledgermodels.SettlementsTableName)
	return db.Exec(ctx, query, s.Tag, s.ReceivedRevenueUSD, s.NotedBy, s.NotedAt, uint64(time.Now().UnixNano()))
}

// GetSettlement returns the latest settlement record for a tag, or nil when
// none has been recorded.
func (db *LedgerDB) GetSettlement(ctx context.Context, tag string) (*ledgermodels.Settlement, error) {
	query := fmt.Sprintf(`
		SELECT tag, received_revenue_usd, noted_by, noted_at, version
		FROM "%s"."%s" FINAL
		WHERE tag = ?
	`, db.Name, ledgermodels.SettlementsTableName)

	var rows []ledgermodels.Settlement
	if err := db.Select(ctx, &rows, query, tag); err != nil {
		return nil, fmt.Errorf("get settlement %s: %w", tag, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// UpsertWallet records a wallet submission; the newest version wins.
func (db *LedgerDB) UpsertWallet(ctx context.Context, w *ledgermodels.Wallet) error {
	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (adm_code, chain, address, submitted_at, version)
		VALUES (?, ?, ?, ?, ?)`, db.Name, ledgermodels.WalletsTableName)
	return db.Exec(ctx, query, w.AdmCode, w.Chain, w.Address, w.SubmittedAt, uint64(time.Now().UnixNano()))
}

// GetWallet returns the current mapping for a recipient, or nil.
func (db *LedgerDB) GetWallet(ctx context.Context, admCode string) (*ledgermodels.Wallet, error) {
	query := fmt.Sprintf(`
		SELECT adm_code, chain, address, submitted_at, version
		FROM "%s"."%s" FINAL
		WHERE adm_code = ?
	`, db.Name, ledgermodels.WalletsTableName)

	var rows []ledgermodels.Wallet
	if err := db.Select(ctx, &rows, query, admCode); err != nil {
		return nil, fmt.Errorf("get wallet %s: %w", admCode, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// WalletDirectory returns the full recipient -> "chain:address" mapping.
func (db *LedgerDB) WalletDirectory(ctx context.Context) (map[string]string, error) {
	query := fmt.Sprintf(`
		SELECT adm_code, chain, address, submitted_at, version
		FROM "%s"."%s" FINAL
	`, db.Name, ledgermodels.WalletsTableName)

	var rows []ledgermodels.Wallet
	if err := db.Select(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("wallet directory: %w", err)
	}

	dir := make(map[string]string, len(rows))
	for i := range rows {
		w := &rows[i]
		if w.AdmCode == "" || w.Chain == "" || w.Address == "" {
			continue
		}
		dir[w.AdmCode] = w.Key()
	}
	return dir, nil
}

// SaveLedger persists a computed ledger header and its rows atomically enough
// for our purposes: both share one version, so a reread after a partial
// failure still pairs matching header/rows once the rerun lands.
func (db *LedgerDB) SaveLedger(ctx context.Context, header *ledgermodels.Header, rows []ledgermodels.Row) error {
	version := uint64(header.GeneratedAt.UTC().UnixNano())

	headerQuery := fmt.Sprintf(`INSERT INTO "%s"."%s" (
		tag, generated_at, pool_usd, total_units, received_revenue_usd, hard_cap_usd,
		split_pct, wallet_cap_pct, creator_adm_code, ramp_active, zero_payout,
		full_rate_pool_usd, diverted_usd, redirected_usd, version
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, db.Name, ledgermodels.LedgersTableName)

	if err := db.Exec(ctx, headerQuery,
		header.Tag, header.GeneratedAt, header.PoolUSD, header.TotalUnits,
		header.ReceivedRevenueUSD, header.HardCapUSD, header.SplitPct, header.WalletCapPct,
		header.CreatorAdmCode, header.RampActive, header.ZeroPayout,
		header.FullRatePoolUSD, header.DivertedUSD, header.RedirectedUSD, version,
	); err != nil {
		return fmt.Errorf("save ledger header %s: %w", header.Tag, err)
	}

	if len(rows) == 0 {
		return nil
	}

	rowsQuery := fmt.Sprintf(`INSERT INTO "%s"."%s" (
		tag, position, adm_code, wallet, units, share, amount_usd, capped, cap_reason, version
	) VALUES`, db.Name, ledgermodels.LedgerRowsTableName)

	batch, err := db.PrepareBatch(ctx, rowsQuery)
	if err != nil {
		return err
	}
	defer func(batch driver.Batch) {
		_ = batch.Abort()
	}(batch)

	for i := range rows {
		r := &rows[i]
		if err := batch.Append(
			header.Tag, r.Position, r.AdmCode, r.Wallet, r.Units,
			r.Share, r.AmountUSD, r.Capped, r.CapReason, version,
		); err != nil {
			return fmt.Errorf("append ledger row: %w", err)
		}
	}

	return batch.Send()
}

// GetLedgerHeader returns the latest ledger header for a tag, or nil.
func (db *LedgerDB) GetLedgerHeader(ctx context.Context, tag string) (*ledgermodels.Header, error) {
	query := fmt.Sprintf(`
		SELECT tag, generated_at, pool_usd, total_units, received_revenue_usd, hard_cap_usd,
			split_pct, wallet_cap_pct, creator_adm_code, ramp_active, zero_payout,
			full_rate_pool_usd, diverted_usd, redirected_usd, version
		FROM "%s"."%s" FINAL
		WHERE tag = ?
	`, db.Name, ledgermodels.LedgersTableName)

	var rows []ledgermodels.Header
	if err := db.Select(ctx, &rows, query, tag); err != nil {
		return nil, fmt.Errorf("get ledger header %s: %w", tag, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// GetLedgerRows returns the rows of the latest run for a tag in presentation order.
func (db *LedgerDB) GetLedgerRows(ctx context.Context, tag string) ([]ledgermodels.Row, error) {
	query := fmt.Sprintf(`
		SELECT tag, position, adm_code, wallet, units, share, amount_usd, capped, cap_reason, version
		FROM "%s"."%s" FINAL
		WHERE tag = ?
		ORDER BY position
	`, db.Name, ledgermodels.LedgerRowsTableName)

	var rows []ledgermodels.Row
	if err := db.Select(ctx, &rows, query, tag); err != nil {
		return nil, fmt.Errorf("get ledger rows %s: %w", tag, err)
	}
	return rows, nil
}

// ListLedgerTags returns the most recent period tags that have a ledger.
func (db *LedgerDB) ListLedgerTags(ctx context.Context, limit int) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT tag
		FROM "%s"."%s" FINAL
		ORDER BY tag DESC
		LIMIT ?
	`, db.Name, ledgermodels.LedgersTableName)

	var rows []struct {
		Tag string `ch:"tag"`
	}
	if err := db.Select(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("list ledger tags: %w", err)
	}
	tags := make([]string, len(rows))
	for i := range rows {
		tags[i] = rows[i].Tag
	}
	return tags, nil
}

// RecipientEarnings returns a recipient's rows across periods, newest first.
// Rows for the same (tag, recipient) are already merged by the payout core,
// but a recipient can legitimately appear once as itself and once as the
// overflow destination; both are returned.
func (db *LedgerDB) RecipientEarnings(ctx context.Context, admCode string, limit int) ([]ledgermodels.Earning, error) {
	query := fmt.Sprintf(`
		SELECT tag, sum(units) AS units, sum(share) AS share, sum(amount_usd) AS amount_usd, max(capped) AS capped
		FROM "%s"."%s" FINAL
		WHERE adm_code = ?
		GROUP BY tag
		ORDER BY tag DESC
		LIMIT ?
	`, db.Name, ledgermodels.LedgerRowsTableName)

	var rows []ledgermodels.Earning
	if err := db.Select(ctx, &rows, query, admCode, limit); err != nil {
		return nil, fmt.Errorf("recipient earnings %s: %w", admCode, err)
	}
	return rows, nil
}
