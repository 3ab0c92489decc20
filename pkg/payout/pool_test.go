package payout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustPeriod(t *testing.T, tag string) Period {
	t.Helper()
	p, err := PeriodForTag(tag)
	require.NoError(t, err)
	return p
}

func TestComputePoolFullRate(t *testing.T) {
	cfg := DefaultConfig()
	res := ComputePool(1000, cfg, mustPeriod(t, "2026-06"))
	require.InDelta(t, 130, res.PoolUSD, 1e-9)
	require.InDelta(t, 130, res.FullRatePoolUSD, 1e-9)
	require.False(t, res.RampActive)
	require.False(t, res.ZeroPayout)
	require.Zero(t, res.DivertedUSD)
}

func TestComputePoolHardCap(t *testing.T) {
	cfg := DefaultConfig()
	res := ComputePool(1_000_000, cfg, mustPeriod(t, "2026-06"))
	require.InDelta(t, cfg.HardCapUSD, res.PoolUSD, 1e-9)
	require.InDelta(t, cfg.HardCapUSD, res.FullRatePoolUSD, 1e-9)
}

func TestComputePoolZeroPayoutMonths(t *testing.T) {
	cfg := DefaultConfig()
	for _, tag := range []string{"2026-01", "2026-02"} {
		res := ComputePool(1000, cfg, mustPeriod(t, tag))
		require.True(t, res.RampActive, tag)
		require.True(t, res.ZeroPayout, tag)
		require.Zero(t, res.PoolUSD, tag)
		require.InDelta(t, 130, res.FullRatePoolUSD, 1e-9, tag)
		require.InDelta(t, 130, res.DivertedUSD, 1e-9, tag)
	}
}

func TestComputePoolReducedRateMonth(t *testing.T) {
	cfg := DefaultConfig()
	res := ComputePool(1000, cfg, mustPeriod(t, "2026-03"))
	require.True(t, res.RampActive)
	require.False(t, res.ZeroPayout)
	require.InDelta(t, 65, res.PoolUSD, 1e-9)
	require.InDelta(t, 130, res.FullRatePoolUSD, 1e-9)
	require.InDelta(t, 65, res.DivertedUSD, 1e-9)
}

func TestComputePoolAfterRamp(t *testing.T) {
	cfg := DefaultConfig()
	res := ComputePool(1000, cfg, mustPeriod(t, "2026-04"))
	require.False(t, res.RampActive)
	require.InDelta(t, 130, res.PoolUSD, 1e-9)
}

func TestComputePoolNegativeRevenue(t *testing.T) {
	cfg := DefaultConfig()
	res := ComputePool(-500, cfg, mustPeriod(t, "2026-06"))
	require.Zero(t, res.PoolUSD)
	require.Zero(t, res.FullRatePoolUSD)
}
