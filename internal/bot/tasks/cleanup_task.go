package tasks

import (
	"context"
	"fmt"
	"time"
)

// newCleanupTask returns the retention task: it deletes message records
// and moderation actions older than the configured retention window.
// Bot configs are never removed by cleanup.
func newCleanupTask(deps TaskDeps) ScheduledTaskFunc {
	return func(ctx context.Context) error {
		log := deps.Logger.With("task", "cleanup")

		days := deps.Config.Moderation.RetentionDays
		cutoff := time.Now().UTC().AddDate(0, 0, -days)

		removed, err := deps.Store.CleanupOldData(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("failed to clean up old data: %w", err)
		}

		log.InfoContext(ctx, "Retention cleanup finished", "retention_days", days, "rows_removed", removed)
		return nil
	}
}
