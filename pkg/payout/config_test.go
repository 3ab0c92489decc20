package payout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("SPLIT_PCT", "0.2")
	t.Setenv("WALLET_CAP_PCT", "0.05")
	t.Setenv("CREATOR_ADM_CODE", " house ")
	t.Setenv("BILLABLE_EVENT_TYPES", "ad_viewable, ad_click")
	t.Setenv("LAUNCH_DATE", "2027-03-01")

	cfg := ConfigFromEnv()
	require.Equal(t, 0.2, cfg.SplitPct)
	require.Equal(t, 0.05, cfg.WalletCapPct)
	require.Equal(t, "HOUSE", cfg.CreatorAdmCode)
	require.Equal(t, map[string]struct{}{"ad_viewable": {}, "ad_click": {}}, cfg.BillableTypes)
	require.Equal(t, 2027, cfg.Ramp.LaunchDate.Year())
}

func TestConfigFromEnvRampDisabledWithZeroMonths(t *testing.T) {
	t.Setenv("RAMP_MONTHS", "0")
	t.Setenv("ZERO_PAYOUT_MONTHS", "0")

	cfg := ConfigFromEnv()
	require.Zero(t, cfg.Ramp.Months)
	require.Zero(t, cfg.Ramp.ZeroMonths)

	// With the ramp off, even the launch month pays at the full rate.
	res := ComputePool(1000, cfg, mustPeriod(t, "2026-01"))
	require.False(t, res.RampActive)
	require.False(t, res.ZeroPayout)
	require.InDelta(t, 130, res.PoolUSD, 1e-9)
}
