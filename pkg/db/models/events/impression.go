package events

import (
	"time"
)

const ImpressionsTableName = "impressions"

// Impression is one observed ad-impression candidate as reported by the
// browser collector, after strict parsing. Raw envelopes that cannot be
// converted into this shape are dropped at the collector boundary and never
// reach the table.
//
// viewable and ivt are kept as UInt8 columns so the settlement query can
// filter billable rows without JSON extraction.
type Impression struct {
	Ts         time.Time `ch:"ts" json:"ts"`
	EventType  string    `ch:"event_type" json:"event_type"` // LowCardinality for efficient filtering
	SidHash    string    `ch:"sid_hash" json:"sid_hash"`     // privacy-preserving session id
	Page       string    `ch:"page" json:"page"`
	Slot       string    `ch:"slot" json:"slot"`
	Device     string    `ch:"device" json:"device"`
	AdmCode    string    `ch:"adm_code" json:"adm_code"` // recipient code, canonical uppercase ("" when absent)
	Viewable   bool      `ch:"viewable" json:"viewable"`
	IVT        bool      `ch:"ivt" json:"ivt"` // invalid-traffic flag from the anti-abuse heuristics
	IngestedAt time.Time `ch:"ingested_at" json:"ingested_at"`
}
