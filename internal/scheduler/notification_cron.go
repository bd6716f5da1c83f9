package cron

import (
	"context"

	"github.com/primerapp/primer/internal/jobs"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartNotificationCronJobs schedules the daily nudge scan. Runs at 09:00
// server time so nudges land during the day, not at midnight.
func StartNotificationCronJobs(scanner *jobs.NudgeScanner) {
	c := cron.New()

	c.AddFunc("0 9 * * *", func() {
		if err := scanner.RunDailyScan(context.Background()); err != nil {
			logrus.WithError(err).Error("Daily nudge scan failed")
		}
	})

	c.Start()
}
