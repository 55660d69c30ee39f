package core

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// StartCleanupScheduler runs the task-table cleanup on the configured cron
// expression. The returned cron is already started; callers stop it on
// shutdown.
func StartCleanupScheduler(sc *ServiceContext) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(sc.Config.CleanupCron, func() {
		removed := sc.Tracker.CleanupOldTasks(sc.Config.TaskRetentionDays)
		log.Printf("task cleanup removed %d tasks older than %d days", removed, sc.Config.TaskRetentionDays)
	})
	if err != nil {
		return nil, fmt.Errorf("error scheduling task cleanup: %w", err)
	}

	c.Start()
	return c, nil
}
