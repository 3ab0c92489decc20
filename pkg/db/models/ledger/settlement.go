package ledger

import (
	"time"
)

const SettlementsTableName = "settlements"

// Settlement is the verified revenue record for one settlement period.
// Its presence is the precondition for a payout run: the workflow refuses to
// compute a ledger for a tag without one.
type Settlement struct {
	Tag                string    `ch:"tag" json:"tag"` // "YYYY-MM"
	ReceivedRevenueUSD float64   `ch:"received_revenue_usd" json:"received_revenue_usd"`
	NotedBy            string    `ch:"noted_by" json:"noted_by"`
	NotedAt            time.Time `ch:"noted_at" json:"noted_at"`
	Version            uint64    `ch:"version" json:"-"`
}
