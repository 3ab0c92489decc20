package ledger

import (
	"time"
)

const (
	LedgersTableName    = "ledgers"
	LedgerRowsTableName = "ledger_rows"
)

// Header is the per-period ledger summary persisted alongside its rows.
// Regenerating a period rewrites both with a newer version; readers see the
// latest run only.
type Header struct {
	Tag         string    `ch:"tag" json:"tag"`
	GeneratedAt time.Time `ch:"generated_at" json:"generated_at"`
	PoolUSD     float64   `ch:"pool_usd" json:"pool_usd"`

	// Audit metadata.
	TotalUnits         uint64  `ch:"total_units" json:"total_units"`
	ReceivedRevenueUSD float64 `ch:"received_revenue_usd" json:"received_revenue_usd"`
	HardCapUSD         float64 `ch:"hard_cap_usd" json:"hard_cap_usd"`
	SplitPct           float64 `ch:"split_pct" json:"split_pct"`
	WalletCapPct       float64 `ch:"wallet_cap_pct" json:"wallet_cap_pct"`
	CreatorAdmCode     string  `ch:"creator_adm_code" json:"creator_adm_code,omitempty"`
	RampActive         bool    `ch:"ramp_active" json:"ramp_active"`
	ZeroPayout         bool    `ch:"zero_payout" json:"zero_payout"`
	FullRatePoolUSD    float64 `ch:"full_rate_pool_usd" json:"full_rate_pool_usd"`
	DivertedUSD        float64 `ch:"diverted_usd" json:"diverted_usd"`
	RedirectedUSD      float64 `ch:"redirected_usd" json:"redirected_usd"`

	Version uint64 `ch:"version" json:"-"`
}

// Row is one persisted allocation row. Position preserves the computed
// presentation order (descending amount, stable).
type Row struct {
	Tag       string  `ch:"tag" json:"-"`
	Position  uint32  `ch:"position" json:"-"`
	AdmCode   string  `ch:"adm_code" json:"adm_code"`
	Wallet    string  `ch:"wallet" json:"wallet,omitempty"`
	Units     uint64  `ch:"units" json:"units"`
	Share     float64 `ch:"share" json:"share"`
	AmountUSD float64 `ch:"amount_usd" json:"amount_usd"`
	Capped    bool    `ch:"capped" json:"capped"`
	CapReason string  `ch:"cap_reason" json:"cap_reason,omitempty"`
	Version   uint64  `ch:"version" json:"-"`
}

// Earning is one period's outcome for a single recipient, used by the
// per-recipient history endpoint.
type Earning struct {
	Tag       string  `ch:"tag" json:"tag"`
	Units     uint64  `ch:"units" json:"units"`
	Share     float64 `ch:"share" json:"share"`
	AmountUSD float64 `ch:"amount_usd" json:"amount_usd"`
	Capped    bool    `ch:"capped" json:"capped"`
}
