package payout

import "math"

// PoolResult is the sized revenue-share pool plus everything the ledger
// records about how it was derived.
type PoolResult struct {
	PoolUSD         float64
	FullRatePoolUSD float64
	DivertedUSD     float64
	SplitPct        float64
	RampActive      bool
	ZeroPayout      bool
}

// ComputePool sizes the distributable pool for a period from the reported
// revenue. The full-rate figure is always computed so ramped and zeroed
// periods still record what a mature period would have paid.
func ComputePool(revenueUSD float64, cfg Config, period Period) PoolResult {
	if revenueUSD < 0 {
		revenueUSD = 0
	}
	res := PoolResult{
		FullRatePoolUSD: math.Min(revenueUSD*cfg.SplitPct, cfg.HardCapUSD),
		SplitPct:        cfg.SplitPct,
	}
	res.PoolUSD = res.FullRatePoolUSD

	idx := period.MonthIndex(cfg.Ramp.LaunchDate)
	if idx > 0 && idx <= cfg.Ramp.Months {
		res.RampActive = true
		res.SplitPct = cfg.Ramp.ReducedSplitPct
		res.PoolUSD = math.Min(revenueUSD*cfg.Ramp.ReducedSplitPct, cfg.HardCapUSD)
		if idx <= cfg.Ramp.ZeroMonths {
			res.ZeroPayout = true
			res.PoolUSD = 0
		}
		res.DivertedUSD = res.FullRatePoolUSD - res.PoolUSD
	}
	return res
}
