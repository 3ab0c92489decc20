package db

import (
	"context"
	"time"

	eventmodels "github.com/GareBear99/admension/pkg/db/models/events"
	ledgermodels "github.com/GareBear99/admension/pkg/db/models/ledger"
)

// EventsStore exposes the impression-feed operations used by activities and
// controllers, so tests can supply fakes.
type EventsStore interface {
	DatabaseName() string
	InsertImpressions(ctx context.Context, impressions []*eventmodels.Impression) error
	ImpressionsForPeriod(ctx context.Context, start, end time.Time) ([]eventmodels.Impression, error)
	BillableUnitCounts(ctx context.Context, start, end time.Time) ([]UnitCount, error)
	PruneOldImpressions(ctx context.Context, retention time.Duration) error
	Ping(ctx context.Context) error
	Close() error
}

// LedgerStore exposes the settlement/wallet/ledger operations used by
// activities and controllers.
type LedgerStore interface {
	DatabaseName() string
	UpsertSettlement(ctx context.Context, s *ledgermodels.Settlement) error
	GetSettlement(ctx context.Context, tag string) (*ledgermodels.Settlement, error)
	UpsertWallet(ctx context.Context, w *ledgermodels.Wallet) error
	GetWallet(ctx context.Context, admCode string) (*ledgermodels.Wallet, error)
	WalletDirectory(ctx context.Context) (map[string]string, error)
	SaveLedger(ctx context.Context, header *ledgermodels.Header, rows []ledgermodels.Row) error
	GetLedgerHeader(ctx context.Context, tag string) (*ledgermodels.Header, error)
	GetLedgerRows(ctx context.Context, tag string) ([]ledgermodels.Row, error)
	ListLedgerTags(ctx context.Context, limit int) ([]string, error)
	RecipientEarnings(ctx context.Context, admCode string, limit int) ([]ledgermodels.Earning, error)
	Ping(ctx context.Context) error
	Close() error
}
