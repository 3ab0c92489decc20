package controller

import (
	"net/http"
	"time"

	"github.com/go-jose/go-jose/v4/json"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	ledgermodels "github.com/GareBear99/admension/pkg/db/models/ledger"
	"github.com/GareBear99/admension/pkg/payout"
)

// HandleSettlementUpsert records the verified revenue for a period. Writing a
// settlement is what makes the period eligible for a payout run; re-submitting
// the same tag replaces the previous figure.
func (c *Controller) HandleSettlementUpsert(w http.ResponseWriter, r *http.Request) {
	tag := mux.Vars(r)["tag"]
	if _, err := payout.PeriodForTag(tag); err != nil {
		writeError(w, http.StatusBadRequest, "invalid period tag")
		return
	}

	var in struct {
		ReceivedRevenueUSD float64 `json:"received_revenue_usd"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if in.ReceivedRevenueUSD < 0 {
		writeError(w, http.StatusBadRequest, "received_revenue_usd must be non-negative")
		return
	}

	s := &ledgermodels.Settlement{
		Tag:                tag,
		ReceivedRevenueUSD: in.ReceivedRevenueUSD,
		NotedBy:            c.currentUser(r),
		NotedAt:            time.Now().UTC(),
	}
	if err := c.App.LedgerDB.UpsertSettlement(r.Context(), s); err != nil {
		c.App.Logger.Error("Unable to save settlement", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "unable to save settlement")
		return
	}

	writeJSON(w, http.StatusOK, s)
}

// HandleSettlementGet returns the current settlement record for a tag.
func (c *Controller) HandleSettlementGet(w http.ResponseWriter, r *http.Request) {
	tag := mux.Vars(r)["tag"]
	if _, err := payout.PeriodForTag(tag); err != nil {
		writeError(w, http.StatusBadRequest, "invalid period tag")
		return
	}

	s, err := c.App.LedgerDB.GetSettlement(r.Context(), tag)
	if err != nil {
		c.App.Logger.Error("Unable to fetch settlement", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "unable to fetch settlement")
		return
	}
	if s == nil {
		writeError(w, http.StatusNotFound, "no settlement for period")
		return
	}

	writeJSON(w, http.StatusOK, s)
}
