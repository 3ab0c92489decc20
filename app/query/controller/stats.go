package controller

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/GareBear99/admension/pkg/payout"
)

// HandlePeriodStats returns raw billable unit counts per recipient for a
// period, straight off the impressions table. Useful for previewing a run
// before the settlement lands; the authoritative numbers are in the ledger.
func (c *Controller) HandlePeriodStats(w http.ResponseWriter, r *http.Request) {
	tag := mux.Vars(r)["tag"]
	period, err := payout.PeriodForTag(tag)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	counts, err := c.App.EventsDB.BillableUnitCounts(r.Context(), period.Start, period.End)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	var total uint64
	for _, uc := range counts {
		total += uc.Units
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tag":         period.Tag,
		"total_units": total,
		"data":        counts,
	})
}
