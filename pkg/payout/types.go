package payout

import (
	"time"
)

// Epsilon is the tolerance used for every floating-point comparison in the
// distribution math. Amounts are kept unrounded until presentation.
const Epsilon = 1e-9

// NoWallet is the sentinel payout-address key for recipients without a
// registered destination. It groups like a real address during aggregation
// and is excluded from the waterfall.
const NoWallet = "NO_WALLET"

// UnallocatedCode is the pseudo-recipient credited with funds that have no
// valid destination, keeping the ledger balanced to the pool.
const UnallocatedCode = "UNALLOCATED"

// CapReason tags why a row's amount was fixed outside the plain proportional
// split.
type CapReason string

const (
	ReasonCarry            CapReason = "carry"
	ReasonWalletCap        CapReason = "wallet_cap"
	ReasonCreatorOverflow  CapReason = "creator_overflow"
	ReasonUnallocated      CapReason = "unallocated"
	ReasonNoWalletRedirect CapReason = "no_wallet_redirect"
)

// Event is one impression candidate as seen by the core: plain data, already
// detached from storage and transport.
type Event struct {
	Ts           time.Time
	Type         string
	AdmCode      string
	Viewable     bool
	FraudFlagged bool
}

// Units maps a canonical recipient code to its billable impression count for
// the period. Codes with zero surviving events never appear as keys.
type Units map[string]uint64

// Total returns the unit count across all recipients.
func (u Units) Total() uint64 {
	var total uint64
	for _, n := range u {
		total += n
	}
	return total
}

// Row is one allocation in the final ledger.
type Row struct {
	AdmCode   string
	Wallet    string
	Units     uint64
	Share     float64
	AmountUSD float64
	Capped    bool
	CapReason CapReason
}

// Meta is the audit block attached to every ledger.
type Meta struct {
	TotalUnits         uint64
	ReceivedRevenueUSD float64
	HardCapUSD         float64
	SplitPct           float64
	WalletCapPct       float64
	CreatorAdmCode     string
	RampActive         bool
	ZeroPayout         bool
	FullRatePoolUSD    float64
	DivertedUSD        float64
	RedirectedUSD      float64
}

// Ledger is the complete output of one settlement run.
type Ledger struct {
	Tag         string
	GeneratedAt time.Time
	PoolUSD     float64
	Meta        Meta
	Rows        []Row
}

// ConservationDelta returns sum(rows.amount) - pool. A correct run keeps the
// absolute value under Epsilon for any input.
func (l *Ledger) ConservationDelta() float64 {
	var sum float64
	for i := range l.Rows {
		sum += l.Rows[i].AmountUSD
	}
	return sum - l.PoolUSD
}
