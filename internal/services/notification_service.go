package services

import (
	"context"
	"fmt"
	"time"

	"github.com/primerapp/primer/internal/models"
	"github.com/primerapp/primer/internal/repository"
	"github.com/primerapp/primer/pkg/apperrors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	inactiveAfter  = 3 * 24 * time.Hour
	staleAfter     = 7 * 24 * time.Hour
	nudgeCooldown  = 3 * 24 * time.Hour
	staleScanLimit = 500
)

type NotificationService struct {
	repo          *repository.NotificationRepository
	userRepo      *repository.UserRepository
	checklistRepo *repository.ChecklistRepository
}

func NewNotificationService(repo *repository.NotificationRepository, userRepo *repository.UserRepository, checklistRepo *repository.ChecklistRepository) *NotificationService {
	return &NotificationService{
		repo:          repo,
		userRepo:      userRepo,
		checklistRepo: checklistRepo,
	}
}

// CreateNotification logs a new notification for a user
func (s *NotificationService) CreateNotification(ctx context.Context, userID primitive.ObjectID, notifType, title, message string, targetID *primitive.ObjectID) error {
	notif := &models.Notification{
		UserID:   userID,
		Type:     notifType,
		Title:    title,
		Message:  message,
		Read:     false,
		TargetID: targetID,
	}
	return s.repo.CreateNotification(ctx, notif)
}

// GetUserNotifications returns all unexpired notifications for a user
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	return s.repo.GetUserNotifications(ctx, userID)
}

// loadOwnedNotification fetches a notification and verifies the caller owns it.
func (s *NotificationService) loadOwnedNotification(ctx context.Context, userID primitive.ObjectID, notifID string) (*models.Notification, error) {
	objID, err := primitive.ObjectIDFromHex(notifID)
	if err != nil {
		return nil, fmt.Errorf("invalid notification ID %q: %w", notifID, apperrors.ErrInvalidArgument)
	}

	notif, err := s.repo.GetNotificationByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	if notif.UserID != userID {
		return nil, fmt.Errorf("notification %s belongs to another user: %w", notifID, apperrors.ErrForbidden)
	}

	return notif, nil
}

// MarkNotificationAsRead sets the "read" status of a notification to true
func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, userID primitive.ObjectID, notifID string) error {
	notif, err := s.loadOwnedNotification(ctx, userID, notifID)
	if err != nil {
		return err
	}
	return s.repo.MarkAsRead(ctx, notif.ID)
}

// DeleteNotification deletes a specific notification
func (s *NotificationService) DeleteNotification(ctx context.Context, userID primitive.ObjectID, notifID string) error {
	notif, err := s.loadOwnedNotification(ctx, userID, notifID)
	if err != nil {
		return err
	}
	return s.repo.DeleteNotification(ctx, notif.ID)
}

// CheckInactiveUsers nudges users who have not touched the app for a few
// days. A user is nudged at most once per cooldown window.
func (s *NotificationService) CheckInactiveUsers(ctx context.Context) error {
	users, err := s.userRepo.GetAllUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch users: %w", err)
	}

	now := time.Now()
	for _, user := range users {
		if user.LastActiveAt.IsZero() || now.Sub(user.LastActiveAt) >= inactiveAfter {
			existing, err := s.repo.GetLatestNotificationByType(ctx, user.ID, models.NotificationUserInactive)
			if err == nil && existing != nil && now.Sub(existing.CreatedAt) < nudgeCooldown {
				continue // skip duplicate notification
			}

			err = s.CreateNotification(ctx, user.ID, models.NotificationUserInactive,
				"We miss you!",
				"You haven't been active for a few days. Come back and tick off a step or two!",
				nil,
			)
			if err != nil {
				logrus.WithError(err).Warnf("Failed to send inactivity notification to user %s", user.ID.Hex())
			}
		}
	}

	return nil
}

// CheckStaleChecklists nudges owners of checklists that have unfinished
// steps and no writes for a week. Completion is derived on the spot, so a
// checklist finished since its last write is never nudged.
func (s *NotificationService) CheckStaleChecklists(ctx context.Context) error {
	cutoff := time.Now().Add(-staleAfter)
	checklists, err := s.checklistRepo.ListStaleChecklists(ctx, cutoff, staleScanLimit)
	if err != nil {
		return fmt.Errorf("failed to fetch stale checklists: %w", err)
	}

	now := time.Now()
	for i := range checklists {
		checklist := &checklists[i]

		progress := ComputeProgress(checklist)
		if progress.TotalSteps == 0 || progress.CompletedSteps == progress.TotalSteps {
			continue
		}

		existing, err := s.repo.GetLatestNotificationForTarget(ctx, checklist.UserID, models.NotificationChecklistStale, checklist.ID)
		if err == nil && existing != nil && now.Sub(existing.CreatedAt) < nudgeCooldown {
			continue // nudged recently
		}

		remaining := progress.TotalSteps - progress.CompletedSteps
		message := fmt.Sprintf("%q still has %d unfinished steps. Pick up where you left off!", checklist.Title, remaining)
		err = s.CreateNotification(ctx, checklist.UserID, models.NotificationChecklistStale, "Still settling in?", message, &checklist.ID)
		if err != nil {
			logrus.WithError(err).Warnf("Failed to send stale checklist notification for %s", checklist.ID.Hex())
		}
	}

	return nil
}

// DeleteExpiredNotifications removes notifications past their expiry.
func (s *NotificationService) DeleteExpiredNotifications(ctx context.Context) error {
	return s.repo.DeleteExpiredNotifications(ctx)
}
