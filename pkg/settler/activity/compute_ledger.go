package activity

import (
	"context"
	"math"
	"time"

	"github.com/go-jose/go-jose/v4/json"
	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"

	"github.com/GareBear99/admension/pkg/db/models/events"
	ledgermodels "github.com/GareBear99/admension/pkg/db/models/ledger"
	"github.com/GareBear99/admension/pkg/payout"
	pkgredis "github.com/GareBear99/admension/pkg/redis"
)

// RunResult summarizes one completed settlement run.
type RunResult struct {
	Tag        string  `json:"tag"`
	PoolUSD    float64 `json:"pool_usd"`
	TotalUnits uint64  `json:"total_units"`
	RowCount   int     `json:"row_count"`
}

// ComputeLedger runs the full settlement pipeline for one period tag and
// persists the resulting ledger. A verified settlement record is required;
// runs for tags without one fail without retrying so the schedule surfaces
// the missing revenue instead of hammering the database.
func (c *Context) ComputeLedger(ctx context.Context, tag string) (*RunResult, error) {
	period, err := payout.PeriodForTag(tag)
	if err != nil {
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), "invalid_period", err)
	}

	settlement, err := c.LedgerDB.GetSettlement(ctx, period.Tag)
	if err != nil {
		return nil, err
	}
	if settlement == nil {
		return nil, temporal.NewNonRetryableApplicationError(
			"no settlement recorded for period "+period.Tag, "settlement_missing", nil)
	}

	impressions, err := c.EventsDB.ImpressionsForPeriod(ctx, period.Start, period.End)
	if err != nil {
		return nil, err
	}
	wallets, err := c.LedgerDB.WalletDirectory(ctx)
	if err != nil {
		return nil, err
	}

	ledger := payout.Compute(payout.Input{
		Period:      period,
		Events:      toPayoutEvents(impressions),
		RevenueUSD:  settlement.ReceivedRevenueUSD,
		Wallets:     wallets,
		GeneratedAt: time.Now().UTC(),
	}, c.Config)

	if ledger.Meta.RedirectedUSD > 0 && c.Config.CreatorAdmCode == "" {
		c.Logger.Warn("Unaddressed earnings redirected with no overflow recipient configured",
			zap.String("tag", ledger.Tag),
			zap.Float64("redirected_usd", ledger.Meta.RedirectedUSD))
	}

	if delta := ledger.ConservationDelta(); math.Abs(delta) > 1e-6 {
		return nil, temporal.NewApplicationError("ledger rows do not sum to pool", "conservation_violation", delta)
	}

	header, rows := toStoredLedger(ledger)
	if err := c.LedgerDB.SaveLedger(ctx, header, rows); err != nil {
		return nil, err
	}

	c.Logger.Info("Ledger generated",
		zap.String("tag", ledger.Tag),
		zap.Float64("pool_usd", ledger.PoolUSD),
		zap.Uint64("total_units", ledger.Meta.TotalUnits),
		zap.Int("rows", len(rows)),
	)

	result := &RunResult{
		Tag:        ledger.Tag,
		PoolUSD:    ledger.PoolUSD,
		TotalUnits: ledger.Meta.TotalUnits,
		RowCount:   len(rows),
	}

	if c.Redis != nil {
		if payload, jsonErr := json.Marshal(result); jsonErr == nil {
			c.Redis.Publish(ctx, pkgredis.LedgerChannel, payload)
		}
	}
	return result, nil
}

func toPayoutEvents(impressions []events.Impression) []payout.Event {
	out := make([]payout.Event, len(impressions))
	for i := range impressions {
		imp := &impressions[i]
		out[i] = payout.Event{
			Ts:           imp.Ts,
			Type:         imp.EventType,
			AdmCode:      imp.AdmCode,
			Viewable:     imp.Viewable,
			FraudFlagged: imp.IVT,
		}
	}
	return out
}

func toStoredLedger(l *payout.Ledger) (*ledgermodels.Header, []ledgermodels.Row) {
	header := &ledgermodels.Header{
		Tag:                l.Tag,
		GeneratedAt:        l.GeneratedAt,
		PoolUSD:            l.PoolUSD,
		TotalUnits:         l.Meta.TotalUnits,
		ReceivedRevenueUSD: l.Meta.ReceivedRevenueUSD,
		HardCapUSD:         l.Meta.HardCapUSD,
		SplitPct:           l.Meta.SplitPct,
		WalletCapPct:       l.Meta.WalletCapPct,
		CreatorAdmCode:     l.Meta.CreatorAdmCode,
		RampActive:         l.Meta.RampActive,
		ZeroPayout:         l.Meta.ZeroPayout,
		FullRatePoolUSD:    l.Meta.FullRatePoolUSD,
		DivertedUSD:        l.Meta.DivertedUSD,
		RedirectedUSD:      l.Meta.RedirectedUSD,
	}
	rows := make([]ledgermodels.Row, len(l.Rows))
	for i, r := range l.Rows {
		rows[i] = ledgermodels.Row{
			Tag:       l.Tag,
			Position:  uint32(i),
			AdmCode:   r.AdmCode,
			Wallet:    r.Wallet,
			Units:     r.Units,
			Share:     r.Share,
			AmountUSD: r.AmountUSD,
			Capped:    r.Capped,
			CapReason: string(r.CapReason),
		}
	}
	return header, rows
}
