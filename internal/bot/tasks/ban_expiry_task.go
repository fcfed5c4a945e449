package tasks

import (
	"context"
	"fmt"
	"time"
)

// newBanExpiryTask returns the task that deactivates expired temporary
// restrictions. Telegram lifts the restriction on its own (the mute is
// created with an until date), so this task only reconciles the store.
func newBanExpiryTask(deps TaskDeps) ScheduledTaskFunc {
	return func(ctx context.Context) error {
		log := deps.Logger.With("task", "ban_expiry")

		expired, err := deps.Store.ExpireTempBans(ctx, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to expire temp bans: %w", err)
		}

		if len(expired) > 0 {
			log.InfoContext(ctx, "Deactivated expired bans", "count", len(expired))
		}
		return nil
	}
}
