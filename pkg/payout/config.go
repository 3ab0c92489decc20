package payout

import (
	"strings"
	"time"

	"github.com/GareBear99/admension/pkg/utils"
)

// Ramp describes the reduced-rate window after launch. While the period's
// month index (1-based, counted in calendar months from LaunchDate) is at or
// below Months, the pool is computed at ReducedSplitPct instead of the full
// split; while it is at or below ZeroMonths, the pool is forced to zero and
// the full-rate figure is kept as metadata only.
type Ramp struct {
	LaunchDate      time.Time
	Months          int
	ZeroMonths      int
	ReducedSplitPct float64
}

// Config carries every tunable the distribution math depends on.
type Config struct {
	SplitPct       float64
	HardCapUSD     float64
	WalletCapPct   float64
	CreatorAdmCode string
	BillableTypes  map[string]struct{}
	Ramp           Ramp
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		SplitPct:       0.13,
		HardCapUSD:     10000,
		WalletCapPct:   0.01,
		CreatorAdmCode: "",
		BillableTypes: map[string]struct{}{
			"ad_viewable": {},
			"ad_request":  {},
		},
		Ramp: Ramp{
			LaunchDate:      time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
			Months:          3,
			ZeroMonths:      2,
			ReducedSplitPct: 0.065,
		},
	}
}

// ConfigFromEnv builds a Config from the environment, falling back to
// DefaultConfig for anything unset.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.SplitPct = utils.EnvFloat("SPLIT_PCT", cfg.SplitPct)
	cfg.HardCapUSD = utils.EnvFloat("POOL_HARD_CAP_USD", cfg.HardCapUSD)
	cfg.WalletCapPct = utils.EnvFloat("WALLET_CAP_PCT", cfg.WalletCapPct)
	cfg.CreatorAdmCode = strings.ToUpper(strings.TrimSpace(utils.Env("CREATOR_ADM_CODE", cfg.CreatorAdmCode)))

	if raw := utils.Env("BILLABLE_EVENT_TYPES", ""); raw != "" {
		types := make(map[string]struct{})
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types[t] = struct{}{}
			}
		}
		cfg.BillableTypes = types
	}

	if raw := utils.Env("LAUNCH_DATE", ""); raw != "" {
		if d, err := time.Parse("2006-01-02", raw); err == nil {
			cfg.Ramp.LaunchDate = d.UTC()
		}
	}
	// Zero is valid here: RAMP_MONTHS=0 disables the ramp outright.
	cfg.Ramp.Months = utils.EnvIntNonNeg("RAMP_MONTHS", cfg.Ramp.Months)
	cfg.Ramp.ZeroMonths = utils.EnvIntNonNeg("ZERO_PAYOUT_MONTHS", cfg.Ramp.ZeroMonths)
	cfg.Ramp.ReducedSplitPct = utils.EnvFloat("REDUCED_SPLIT_PCT", cfg.Ramp.ReducedSplitPct)
	return cfg
}
