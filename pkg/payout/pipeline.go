package payout

import (
	"time"
)

// Input is everything a settlement run needs, fetched up front so Compute
// stays a pure function of its arguments.
type Input struct {
	Period     Period
	Events     []Event
	RevenueUSD float64
	// Wallets maps canonical recipient codes to "chain:address" keys.
	Wallets     map[string]string
	GeneratedAt time.Time
}

// Compute runs the full settlement pipeline for one period: filter, count,
// size the pool, resolve destinations, redirect unaddressed earnings, and
// distribute under the per-wallet cap. It never fails; degenerate inputs
// produce a valid (possibly all-zero) ledger, and the returned rows always
// sum to the pool.
func Compute(in Input, cfg Config) *Ledger {
	kept := Filter(in.Period, in.Events, cfg.BillableTypes)
	units := Aggregate(kept)
	pool := ComputePool(in.RevenueUSD, cfg, in.Period)

	res := Resolve(units, in.Wallets, pool.PoolUSD, cfg.CreatorAdmCode)

	var rows []Row
	if pool.PoolUSD <= Epsilon {
		rows = zeroRows(res)
	} else {
		rows = Distribute(res.Addressed, pool.PoolUSD, cfg.WalletCapPct, res.Carry, cfg.CreatorAdmCode, in.Wallets[cfg.CreatorAdmCode])
		for i := range rows {
			rows[i].Share = rows[i].AmountUSD / pool.PoolUSD
		}
	}

	return &Ledger{
		Tag:         in.Period.Tag,
		GeneratedAt: in.GeneratedAt.UTC(),
		PoolUSD:     pool.PoolUSD,
		Meta: Meta{
			TotalUnits:         units.Total(),
			ReceivedRevenueUSD: in.RevenueUSD,
			HardCapUSD:         cfg.HardCapUSD,
			SplitPct:           pool.SplitPct,
			WalletCapPct:       cfg.WalletCapPct,
			CreatorAdmCode:     cfg.CreatorAdmCode,
			RampActive:         pool.RampActive,
			ZeroPayout:         pool.ZeroPayout,
			FullRatePoolUSD:    pool.FullRatePoolUSD,
			DivertedUSD:        pool.DivertedUSD,
			RedirectedUSD:      res.RedirectedUSD,
		},
		Rows: rows,
	}
}

// zeroRows materializes a zero-amount row per recipient so a zero-pool period
// still publishes a complete ledger. Addressed and unaddressed recipients are
// interleaved back into code order.
func zeroRows(res Resolution) []Row {
	rows := make([]Row, 0, len(res.Addressed)+len(res.Unaddressed))
	a, u := res.Addressed, res.Unaddressed
	for len(a) > 0 || len(u) > 0 {
		var next Entry
		switch {
		case len(a) == 0:
			next, u = u[0], u[1:]
		case len(u) == 0:
			next, a = a[0], a[1:]
		case a[0].AdmCode < u[0].AdmCode:
			next, a = a[0], a[1:]
		default:
			next, u = u[0], u[1:]
		}
		rows = append(rows, Row{
			AdmCode: next.AdmCode,
			Wallet:  next.Wallet,
			Units:   next.Units,
		})
	}
	return rows
}
