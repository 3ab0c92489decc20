package activity

import (
	"context"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/GareBear99/admension/pkg/payout"
)

// RecomputeTrailing re-runs the settlement pipeline for the given number of
// completed months ending with the most recent one. Late wallet submissions
// and revised revenue notes change historical ledgers; the ReplacingMergeTree
// tables make reruns idempotent, so healing is just recomputing.
//
// Months without a settlement record are skipped rather than failed: a gap in
// the revenue history is an admin problem, not a reason to stop healing the
// months around it.
func (c *Context) RecomputeTrailing(ctx context.Context, months int) error {
	if months <= 0 {
		months = 3
	}

	pool := pond.NewPool(4)
	defer pool.StopAndWait()
	group := pool.NewGroupContext(ctx)

	period := payout.PreviousMonth(time.Now().UTC())
	for i := 0; i < months; i++ {
		tag := period.Tag
		group.SubmitErr(func() error {
			settlement, err := c.LedgerDB.GetSettlement(ctx, tag)
			if err != nil {
				return err
			}
			if settlement == nil {
				c.Logger.Info("Skipping recompute, no settlement", zap.String("tag", tag))
				return nil
			}
			_, err = c.ComputeLedger(ctx, tag)
			return err
		})
		period = payout.PreviousMonth(period.Start)
	}

	return group.Wait()
}
