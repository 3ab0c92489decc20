package controller

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	ledgermodels "github.com/GareBear99/admension/pkg/db/models/ledger"
)

type earningRow struct {
	Tag       string  `json:"tag"`
	Units     uint64  `json:"units"`
	Share     float64 `json:"share"`
	AmountUSD float64 `json:"amount_usd"`
	Capped    bool    `json:"capped"`
}

// HandleRecipientEarnings returns a recipient's per-period payout history,
// newest first.
func (c *Controller) HandleRecipientEarnings(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["code"]))
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing recipient code")
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	earnings, err := c.App.LedgerDB.RecipientEarnings(r.Context(), code, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"adm_code": code,
		"data":     toEarningRows(earnings),
		"limit":    limit,
	})
}

func toEarningRows(earnings []ledgermodels.Earning) []earningRow {
	out := make([]earningRow, len(earnings))
	for i, e := range earnings {
		out[i] = earningRow{
			Tag:       e.Tag,
			Units:     e.Units,
			Share:     round6(e.Share),
			AmountUSD: round2(e.AmountUSD),
			Capped:    e.Capped,
		}
	}
	return out
}
