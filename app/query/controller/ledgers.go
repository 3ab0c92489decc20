package controller

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	ledgermodels "github.com/GareBear99/admension/pkg/db/models/ledger"
	"github.com/GareBear99/admension/pkg/payout"
)

const (
	defaultLimit = 24
	maxLimit     = 120
)

// Monetary precision is applied at the serialization edge only; the stored
// amounts stay unrounded so reruns and conservation checks are exact.
func round2(v float64) float64 { return decimal.NewFromFloat(v).Round(2).InexactFloat64() }
func round6(v float64) float64 { return decimal.NewFromFloat(v).Round(6).InexactFloat64() }

type ledgerRow struct {
	AdmCode   string  `json:"adm_code"`
	Wallet    string  `json:"wallet,omitempty"`
	Units     uint64  `json:"units"`
	Share     float64 `json:"share"`
	AmountUSD float64 `json:"amount_usd"`
	Capped    bool    `json:"capped"`
	CapReason string  `json:"cap_reason,omitempty"`
}

type ledgerHeader struct {
	Tag                string  `json:"tag"`
	GeneratedAt        string  `json:"generated_at"`
	PoolUSD            float64 `json:"pool_usd"`
	TotalUnits         uint64  `json:"total_units"`
	ReceivedRevenueUSD float64 `json:"received_revenue_usd"`
	HardCapUSD         float64 `json:"hard_cap_usd"`
	SplitPct           float64 `json:"split_pct"`
	WalletCapPct       float64 `json:"wallet_cap_pct"`
	CreatorAdmCode     string  `json:"creator_adm_code,omitempty"`
	RampActive         bool    `json:"ramp_active"`
	ZeroPayout         bool    `json:"zero_payout"`
	FullRatePoolUSD    float64 `json:"full_rate_pool_usd"`
	DivertedUSD        float64 `json:"diverted_usd"`
	RedirectedUSD      float64 `json:"redirected_usd"`
}

type ledgerResponse struct {
	Ledger ledgerHeader `json:"ledger"`
	Rows   []ledgerRow  `json:"rows"`
}

func toLedgerHeader(h *ledgermodels.Header) ledgerHeader {
	return ledgerHeader{
		Tag:                h.Tag,
		GeneratedAt:        h.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z"),
		PoolUSD:            round2(h.PoolUSD),
		TotalUnits:         h.TotalUnits,
		ReceivedRevenueUSD: round2(h.ReceivedRevenueUSD),
		HardCapUSD:         round2(h.HardCapUSD),
		SplitPct:           h.SplitPct,
		WalletCapPct:       h.WalletCapPct,
		CreatorAdmCode:     h.CreatorAdmCode,
		RampActive:         h.RampActive,
		ZeroPayout:         h.ZeroPayout,
		FullRatePoolUSD:    round2(h.FullRatePoolUSD),
		DivertedUSD:        round2(h.DivertedUSD),
		RedirectedUSD:      round2(h.RedirectedUSD),
	}
}

func toLedgerRows(rows []ledgermodels.Row) []ledgerRow {
	out := make([]ledgerRow, len(rows))
	for i, r := range rows {
		out[i] = ledgerRow{
			AdmCode:   r.AdmCode,
			Wallet:    r.Wallet,
			Units:     r.Units,
			Share:     round6(r.Share),
			AmountUSD: round2(r.AmountUSD),
			Capped:    r.Capped,
			CapReason: r.CapReason,
		}
	}
	return out
}

func parseLimit(r *http.Request) (int, error) {
	limit := defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid limit")
		}
		limit = n
		if limit > maxLimit {
			limit = maxLimit
		}
	}
	return limit, nil
}

// HandlePayoutsList returns the known settlement period tags, newest first.
func (c *Controller) HandlePayoutsList(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tags, err := c.App.LedgerDB.ListLedgerTags(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": tags, "limit": limit})
}

// HandlePayoutDetail returns the ledger header and rows for one period.
func (c *Controller) HandlePayoutDetail(w http.ResponseWriter, r *http.Request) {
	tag := mux.Vars(r)["tag"]
	if _, err := payout.PeriodForTag(tag); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	header, err := c.App.LedgerDB.GetLedgerHeader(r.Context(), tag)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if header == nil {
		writeError(w, http.StatusNotFound, "no ledger for period")
		return
	}

	rows, err := c.App.LedgerDB.GetLedgerRows(r.Context(), tag)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	writeJSON(w, http.StatusOK, ledgerResponse{
		Ledger: toLedgerHeader(header),
		Rows:   toLedgerRows(rows),
	})
}

// HandlePayoutCSV streams a period's ledger rows as CSV, in the layout the
// payout operators feed to their disbursement tooling.
func (c *Controller) HandlePayoutCSV(w http.ResponseWriter, r *http.Request) {
	tag := mux.Vars(r)["tag"]
	if _, err := payout.PeriodForTag(tag); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	header, err := c.App.LedgerDB.GetLedgerHeader(r.Context(), tag)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if header == nil {
		writeError(w, http.StatusNotFound, "no ledger for period")
		return
	}

	rows, err := c.App.LedgerDB.GetLedgerRows(r.Context(), tag)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	var sb strings.Builder
	sb.WriteString("adm_code,wallet,units,share,amount_usd,capped,cap_reason\n")
	for _, row := range rows {
		capped := "0"
		if row.Capped {
			capped = "1"
		}
		fmt.Fprintf(&sb, "%s,%s,%d,%.6f,%.2f,%s,%s\n",
			row.AdmCode, row.Wallet, row.Units, row.Share, row.AmountUSD, capped, row.CapReason)
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ledger-%s.csv"`, tag))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(sb.String()))
}
