package jobs

import (
	"context"
	"fmt"

	"github.com/primerapp/primer/internal/services"
	"github.com/sirupsen/logrus"
)

// NudgeScanner bundles the periodic notification sweeps into one job.
type NudgeScanner struct {
	NotificationService *services.NotificationService
}

// NewNudgeScanner creates a new instance of NudgeScanner
func NewNudgeScanner(notifService *services.NotificationService) *NudgeScanner {
	return &NudgeScanner{
		NotificationService: notifService,
	}
}

// RunDailyScan nudges owners of stale checklists and inactive users, then
// prunes expired notifications.
func (n *NudgeScanner) RunDailyScan(ctx context.Context) error {
	if err := n.NotificationService.CheckStaleChecklists(ctx); err != nil {
		return fmt.Errorf("stale checklist scan failed: %w", err)
	}

	if err := n.NotificationService.CheckInactiveUsers(ctx); err != nil {
		return fmt.Errorf("inactive user scan failed: %w", err)
	}

	if err := n.NotificationService.DeleteExpiredNotifications(ctx); err != nil {
		return fmt.Errorf("expired notification cleanup failed: %w", err)
	}

	logrus.Info("Nudge scan completed")
	return nil
}
