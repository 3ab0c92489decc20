package ledger

import (
	"time"
)

const WalletsTableName = "wallets"

// Wallet maps a recipient adm code to a payout destination. The table is a
// ReplacingMergeTree keyed by adm_code, so the most recently submitted mapping
// wins, matching the last-write-wins rule for the wallet feed.
type Wallet struct {
	AdmCode     string    `ch:"adm_code" json:"adm_code"` // canonical uppercase
	Chain       string    `ch:"chain" json:"chain"`       // lowercase, e.g. "eth"
	Address     string    `ch:"address" json:"address"`   // lowercase
	SubmittedAt time.Time `ch:"submitted_at" json:"submitted_at"`
	Version     uint64    `ch:"version" json:"-"`
}

// Key returns the groupable payout-address key ("chain:address").
func (w *Wallet) Key() string {
	return w.Chain + ":" + w.Address
}
