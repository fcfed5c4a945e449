package tasks

import (
	"context"
	"fmt"
)

// newSQLMaintenanceTask returns the task that runs periodic database
// maintenance (VACUUM).
func newSQLMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	return func(ctx context.Context) error {
		if err := deps.Store.RunSQLMaintenance(ctx); err != nil {
			return fmt.Errorf("database maintenance failed: %w", err)
		}
		return nil
	}
}
