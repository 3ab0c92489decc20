package controller

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v4/json"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	ledgermodels "github.com/GareBear99/admension/pkg/db/models/ledger"
)

// HandleWalletUpsert creates or replaces a recipient's payout address.
// Codes are canonicalized to uppercase, chains and addresses to lowercase,
// so the wallet table agrees with the casing the aggregator produces.
func (c *Controller) HandleWalletUpsert(w http.ResponseWriter, r *http.Request) {
	var in struct {
		AdmCode string `json:"adm_code"`
		Chain   string `json:"chain"`
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	code := strings.ToUpper(strings.TrimSpace(in.AdmCode))
	chain := strings.ToLower(strings.TrimSpace(in.Chain))
	address := strings.ToLower(strings.TrimSpace(in.Address))
	if code == "" || chain == "" || address == "" {
		writeError(w, http.StatusBadRequest, "adm_code, chain and address are required")
		return
	}

	wallet := &ledgermodels.Wallet{
		AdmCode:     code,
		Chain:       chain,
		Address:     address,
		SubmittedAt: time.Now().UTC(),
	}
	if err := c.App.LedgerDB.UpsertWallet(r.Context(), wallet); err != nil {
		c.App.Logger.Error("Unable to save wallet", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "unable to save wallet")
		return
	}

	writeJSON(w, http.StatusOK, wallet)
}

// HandleWalletGet returns the current mapping for a recipient code.
func (c *Controller) HandleWalletGet(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["code"]))
	if code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	wallet, err := c.App.LedgerDB.GetWallet(r.Context(), code)
	if err != nil {
		c.App.Logger.Error("Unable to fetch wallet", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "unable to fetch wallet")
		return
	}
	if wallet == nil {
		writeError(w, http.StatusNotFound, "no wallet for code")
		return
	}

	writeJSON(w, http.StatusOK, wallet)
}
