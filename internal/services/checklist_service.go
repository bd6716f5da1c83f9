package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/primerapp/primer/internal/models"
	"github.com/primerapp/primer/pkg/apperrors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TemplateStore provides the read-only template lookup forking needs.
type TemplateStore interface {
	GetTemplateByID(ctx context.Context, id primitive.ObjectID) (*models.Template, error)
}

// ChecklistStore is the durable home of checklists. UpdateStepProgress must
// write only the addressed progress entry plus updated_at, never the whole
// document.
type ChecklistStore interface {
	InsertChecklist(ctx context.Context, checklist *models.Checklist) (*models.Checklist, error)
	GetChecklistByID(ctx context.Context, id primitive.ObjectID) (*models.Checklist, error)
	UpdateStepProgress(ctx context.Context, id primitive.ObjectID, stepIndex int, completed bool, completedAt *time.Time, updatedAt time.Time) (*models.Checklist, error)
	ListChecklistsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Checklist, error)
	DeleteChecklist(ctx context.Context, id primitive.ObjectID) error
	GetAllChecklists(ctx context.Context, limit int64) ([]models.Checklist, error)
}

// Notifier delivers user-facing notifications. Delivery is best-effort and
// never fails a checklist operation.
type Notifier interface {
	CreateNotification(ctx context.Context, userID primitive.ObjectID, notifType, title, message string, targetID *primitive.ObjectID) error
}

// ChecklistService implements the fork / progress tracking core. It holds
// no state of its own; every operation is a read, validation, and a single
// targeted write against the injected stores.
type ChecklistService struct {
	templates  TemplateStore
	checklists ChecklistStore
	notifier   Notifier
}

// NewChecklistService creates a new instance of ChecklistService.
// notifier may be nil when completion notifications are not wanted.
func NewChecklistService(templates TemplateStore, checklists ChecklistStore, notifier Notifier) *ChecklistService {
	return &ChecklistService{
		templates:  templates,
		checklists: checklists,
		notifier:   notifier,
	}
}

// ComputeProgress derives the progress summary of a checklist. The summary
// is recomputed on every read and never persisted.
func ComputeProgress(checklist *models.Checklist) models.ChecklistProgress {
	total := len(checklist.Progress)
	completed := 0
	for _, step := range checklist.Progress {
		if step.Completed {
			completed++
		}
	}

	percentage := 0.0
	if total > 0 {
		percentage = float64(completed) / float64(total) * 100
	}

	return models.ChecklistProgress{
		Steps:              checklist.Progress,
		TotalSteps:         total,
		CompletedSteps:     completed,
		ProgressPercentage: percentage,
	}
}

func checklistResponse(checklist *models.Checklist) *models.ChecklistResponse {
	return &models.ChecklistResponse{
		Checklist: checklist,
		Progress:  ComputeProgress(checklist),
	}
}

// ForkTemplate copies a template into a new checklist owned by the user.
// Title and steps are deep-copied; the checklist shares nothing with the
// template afterwards. All steps start incomplete.
func (s *ChecklistService) ForkTemplate(ctx context.Context, userID primitive.ObjectID, templateID string) (*models.ChecklistResponse, error) {
	objID, err := primitive.ObjectIDFromHex(templateID)
	if err != nil {
		return nil, fmt.Errorf("invalid template ID %q: %w", templateID, apperrors.ErrInvalidArgument)
	}

	template, err := s.templates.GetTemplateByID(ctx, objID)
	if err != nil {
		return nil, fmt.Errorf("failed to fork template: %w", err)
	}

	// Snapshot the steps in their display order and reindex from 0.
	steps := make([]models.TemplateStep, len(template.Steps))
	copy(steps, template.Steps)
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Order < steps[j].Order })

	progress := make([]models.StepProgress, len(steps))
	for i := range steps {
		steps[i].Order = i
		progress[i] = models.StepProgress{StepIndex: i, Completed: false, CompletedAt: nil}
	}

	checklist := &models.Checklist{
		UserID:           userID,
		SourceTemplateID: template.ID,
		Title:            template.Title,
		Steps:            steps,
		Progress:         progress,
	}

	created, err := s.checklists.InsertChecklist(ctx, checklist)
	if err != nil {
		return nil, fmt.Errorf("failed to fork template: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":      userID.Hex(),
		"template_id":  template.ID.Hex(),
		"checklist_id": created.ID.Hex(),
	}).Info("Template forked into checklist")

	return checklistResponse(created), nil
}

// loadOwnedChecklist fetches a checklist and verifies the caller owns it.
func (s *ChecklistService) loadOwnedChecklist(ctx context.Context, userID primitive.ObjectID, checklistID string) (*models.Checklist, error) {
	objID, err := primitive.ObjectIDFromHex(checklistID)
	if err != nil {
		return nil, fmt.Errorf("invalid checklist ID %q: %w", checklistID, apperrors.ErrInvalidArgument)
	}

	checklist, err := s.checklists.GetChecklistByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	if checklist.UserID != userID {
		return nil, fmt.Errorf("checklist %s belongs to another user: %w", checklistID, apperrors.ErrForbidden)
	}

	return checklist, nil
}

// GetChecklist returns a single checklist with its computed progress.
func (s *ChecklistService) GetChecklist(ctx context.Context, userID primitive.ObjectID, checklistID string) (*models.ChecklistResponse, error) {
	checklist, err := s.loadOwnedChecklist(ctx, userID, checklistID)
	if err != nil {
		return nil, err
	}
	return checklistResponse(checklist), nil
}

// ListChecklists returns the user's checklists, newest first, each paired
// with its computed progress.
func (s *ChecklistService) ListChecklists(ctx context.Context, userID primitive.ObjectID) ([]models.ChecklistResponse, error) {
	checklists, err := s.checklists.ListChecklistsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklists: %w", err)
	}

	responses := make([]models.ChecklistResponse, 0, len(checklists))
	for i := range checklists {
		responses = append(responses, *checklistResponse(&checklists[i]))
	}
	return responses, nil
}

// UpdateStep sets the completion flag of one step. Completing a step stamps
// completed_at; un-checking clears it. Repeating the current state is a
// no-op that returns the checklist unchanged. Both directions are always
// allowed.
func (s *ChecklistService) UpdateStep(ctx context.Context, userID primitive.ObjectID, checklistID string, stepIndex int, completed bool) (*models.ChecklistResponse, error) {
	checklist, err := s.loadOwnedChecklist(ctx, userID, checklistID)
	if err != nil {
		return nil, err
	}

	if stepIndex < 0 || stepIndex >= len(checklist.Steps) {
		return nil, fmt.Errorf("step index %d out of range [0, %d): %w", stepIndex, len(checklist.Steps), apperrors.ErrInvalidArgument)
	}

	if checklist.Progress[stepIndex].Completed == completed {
		return checklistResponse(checklist), nil
	}

	now := time.Now()
	var completedAt *time.Time
	if completed {
		completedAt = &now
	}

	updated, err := s.checklists.UpdateStepProgress(ctx, checklist.ID, stepIndex, completed, completedAt, now)
	if err != nil {
		return nil, fmt.Errorf("failed to update step: %w", err)
	}

	response := checklistResponse(updated)

	if completed && response.Progress.TotalSteps > 0 && response.Progress.CompletedSteps == response.Progress.TotalSteps {
		s.notifyCompleted(updated)
	}

	logrus.WithFields(logrus.Fields{
		"checklist_id": updated.ID.Hex(),
		"step_index":   stepIndex,
		"completed":    completed,
	}).Info("Checklist step updated")

	return response, nil
}

func (s *ChecklistService) notifyCompleted(checklist *models.Checklist) {
	if s.notifier == nil {
		return
	}
	id := checklist.ID
	userID := checklist.UserID
	title := checklist.Title
	go func() {
		err := s.notifier.CreateNotification(
			context.Background(),
			userID,
			models.NotificationChecklistCompleted,
			"Checklist Completed",
			fmt.Sprintf("You finished every step of %q. Well done!", title),
			&id,
		)
		if err != nil {
			logrus.WithError(err).Warn("Failed to send checklist completed notification")
		}
	}()
}

// DeleteChecklist removes a checklist owned by the user.
func (s *ChecklistService) DeleteChecklist(ctx context.Context, userID primitive.ObjectID, checklistID string) error {
	checklist, err := s.loadOwnedChecklist(ctx, userID, checklistID)
	if err != nil {
		return err
	}

	if err := s.checklists.DeleteChecklist(ctx, checklist.ID); err != nil {
		return fmt.Errorf("failed to delete checklist: %w", err)
	}

	logrus.WithField("checklist_id", checklistID).Info("Checklist deleted")
	return nil
}

// GetAllChecklists lists checklists across users, for admin views.
func (s *ChecklistService) GetAllChecklists(ctx context.Context, limit int64) ([]models.Checklist, error) {
	checklists, err := s.checklists.GetAllChecklists(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch all checklists: %w", err)
	}
	return checklists, nil
}
