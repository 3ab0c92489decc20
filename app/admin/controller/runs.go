package controller

import (
	"net/http"

	"github.com/go-jose/go-jose/v4/json"
	"github.com/gorilla/mux"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/GareBear99/admension/pkg/payout"
	"github.com/GareBear99/admension/pkg/settler/workflow"
)

// HandleTriggerRun starts a payout computation for the given period tag.
// The workflow id is derived from the tag, so re-triggering a period that is
// already running is rejected by the server instead of racing it.
func (c *Controller) HandleTriggerRun(w http.ResponseWriter, r *http.Request) {
	tag := mux.Vars(r)["tag"]
	if _, err := payout.PeriodForTag(tag); err != nil {
		writeError(w, http.StatusBadRequest, "invalid period tag")
		return
	}

	// A settlement record for the tag is the precondition for a run; failing
	// here gives the operator a clear 409 instead of a failed workflow.
	s, err := c.App.LedgerDB.GetSettlement(r.Context(), tag)
	if err != nil {
		c.App.Logger.Error("Unable to fetch settlement", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "unable to fetch settlement")
		return
	}
	if s == nil {
		writeError(w, http.StatusConflict, "no settlement recorded for period")
		return
	}

	options := client.StartWorkflowOptions{
		ID:        c.App.TemporalClient.GetSettlementWorkflowId(tag),
		TaskQueue: c.App.TemporalClient.SettlementQueue,
	}
	run, err := c.App.TemporalClient.TClient.ExecuteWorkflow(r.Context(), options, workflow.SettlementWorkflowName, tag)
	if err != nil {
		c.App.Logger.Error("Unable to start settlement workflow",
			zap.String("tag", tag),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "unable to start settlement workflow")
		return
	}

	c.App.Logger.Info("Settlement run started",
		zap.String("tag", tag),
		zap.String("user", c.currentUser(r)),
		zap.String("workflow_id", run.GetID()),
		zap.String("run_id", run.GetRunID()))

	writeJSON(w, http.StatusAccepted, map[string]string{
		"tag":         tag,
		"workflow_id": run.GetID(),
		"run_id":      run.GetRunID(),
	})
}

// HandleTriggerRecompute starts a recompute across the trailing N months.
func (c *Controller) HandleTriggerRecompute(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Months int `json:"months"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if in.Months <= 0 || in.Months > 36 {
		writeError(w, http.StatusBadRequest, "months must be between 1 and 36")
		return
	}

	options := client.StartWorkflowOptions{
		ID:        "settlement:recompute",
		TaskQueue: c.App.TemporalClient.SettlementQueue,
	}
	run, err := c.App.TemporalClient.TClient.ExecuteWorkflow(r.Context(), options, workflow.RecomputeWorkflowName, in.Months)
	if err != nil {
		c.App.Logger.Error("Unable to start recompute workflow",
			zap.Int("months", in.Months),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "unable to start recompute workflow")
		return
	}

	c.App.Logger.Info("Recompute started",
		zap.Int("months", in.Months),
		zap.String("user", c.currentUser(r)),
		zap.String("workflow_id", run.GetID()),
		zap.String("run_id", run.GetRunID()))

	writeJSON(w, http.StatusAccepted, map[string]string{
		"workflow_id": run.GetID(),
		"run_id":      run.GetRunID(),
	})
}
