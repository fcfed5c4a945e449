package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// broadcastTask sends the configured broadcast message to the target
// chats when the wall clock matches the configured HH:MM. The task runs
// every minute; lastSent guards against a double send when the
// scheduler fires twice inside the same minute, including overlapping
// runs when a slow send outlasts the next tick.
type broadcastTask struct {
	deps TaskDeps
	now  func() time.Time

	mu       sync.Mutex
	lastSent string
}

func newBroadcastTask(deps TaskDeps) ScheduledTaskFunc {
	t := &broadcastTask{deps: deps, now: time.Now}
	return t.run
}

func (t *broadcastTask) run(ctx context.Context) error {
	log := t.deps.Logger.With("task", "broadcast")
	bc := t.deps.Config.Scheduler.Broadcast

	if bc.Time == "" || bc.Message == "" || len(bc.ChatIDs) == 0 {
		log.DebugContext(ctx, "Broadcast not configured, skipping")
		return nil
	}

	now := t.now()
	if now.Format("15:04") != bc.Time {
		return nil
	}

	minute := now.Format("2006-01-02 15:04")
	t.mu.Lock()
	if t.lastSent == minute {
		t.mu.Unlock()
		log.DebugContext(ctx, "Broadcast already sent this minute, skipping", "minute", minute)
		return nil
	}
	t.lastSent = minute
	t.mu.Unlock()

	var failed int
	for _, chatID := range bc.ChatIDs {
		if err := t.deps.Sender.SendMessage(ctx, chatID, bc.Message); err != nil {
			log.ErrorContext(ctx, "Failed to send broadcast", "chat_id", chatID, "error", err)
			failed++
		}
	}

	log.InfoContext(ctx, "Broadcast delivered", "chats", len(bc.ChatIDs), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("broadcast failed for %d of %d chats", failed, len(bc.ChatIDs))
	}
	return nil
}
