package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/GareBear99/admension/pkg/payout"
	"github.com/GareBear99/admension/pkg/settler/activity"
)

// SettlementWorkflow computes and persists the payout ledger for one period.
// An empty tag settles the most recently completed month, which is what the
// monthly schedule passes.
func (c *Context) SettlementWorkflow(ctx workflow.Context, tag string) (*activity.RunResult, error) {
	if tag == "" {
		tag = payout.PreviousMonth(workflow.Now(ctx)).Tag
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    5,
		},
		TaskQueue: c.ActivityContext.TemporalClient.SettlementQueue,
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var result activity.RunResult
	if err := workflow.ExecuteActivity(ctx, (*activity.Context).ComputeLedger, tag).Get(ctx, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RecomputeWorkflow heals the trailing months after late wallet submissions
// or revenue corrections.
func (c *Context) RecomputeWorkflow(ctx workflow.Context, months int) error {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 15 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    3,
		},
		TaskQueue: c.ActivityContext.TemporalClient.SettlementQueue,
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	return workflow.ExecuteActivity(ctx, (*activity.Context).RecomputeTrailing, months).Get(ctx, nil)
}
