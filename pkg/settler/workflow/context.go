package workflow

import (
	"github.com/GareBear99/admension/pkg/settler/activity"
)

// Workflow names as registered on the settlement task queue, for callers
// that start runs by name (admin API, schedules).
const (
	SettlementWorkflowName = "SettlementWorkflow"
	RecomputeWorkflowName  = "RecomputeWorkflow"
)

type Context struct {
	ActivityContext *activity.Context
}
