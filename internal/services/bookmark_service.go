package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/primerapp/primer/internal/models"
	"github.com/primerapp/primer/internal/repository"
	"github.com/primerapp/primer/pkg/apperrors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookmarkService manages saved-for-later templates.
type BookmarkService struct {
	repo         *repository.BookmarkRepository
	templateRepo *repository.TemplateRepository
	checklists   *ChecklistService
}

// NewBookmarkService creates a new instance of BookmarkService.
func NewBookmarkService(repo *repository.BookmarkRepository, templateRepo *repository.TemplateRepository, checklists *ChecklistService) *BookmarkService {
	return &BookmarkService{
		repo:         repo,
		templateRepo: templateRepo,
		checklists:   checklists,
	}
}

// CreateBookmark saves a template for later. The template title is copied
// onto the bookmark so lists render without a second lookup.
func (s *BookmarkService) CreateBookmark(ctx context.Context, userID primitive.ObjectID, templateID, note string) (*models.Bookmark, error) {
	objID, err := primitive.ObjectIDFromHex(templateID)
	if err != nil {
		return nil, fmt.Errorf("invalid template ID %q: %w", templateID, apperrors.ErrInvalidArgument)
	}

	template, err := s.templateRepo.GetTemplateByID(ctx, objID)
	if err != nil {
		return nil, fmt.Errorf("failed to bookmark template: %w", err)
	}

	bookmark := &models.Bookmark{
		UserID:        userID,
		TemplateID:    template.ID,
		TemplateTitle: template.Title,
		Note:          strings.TrimSpace(note),
	}

	created, err := s.repo.CreateBookmark(ctx, bookmark)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":     userID.Hex(),
		"template_id": template.ID.Hex(),
	}).Info("Template bookmarked")

	return created, nil
}

// GetBookmarksByUser lists the user's bookmarks, newest first.
func (s *BookmarkService) GetBookmarksByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Bookmark, error) {
	return s.repo.GetBookmarksByUser(ctx, userID)
}

// loadOwnedBookmark fetches a bookmark and verifies the caller owns it.
func (s *BookmarkService) loadOwnedBookmark(ctx context.Context, userID primitive.ObjectID, bookmarkID string) (*models.Bookmark, error) {
	objID, err := primitive.ObjectIDFromHex(bookmarkID)
	if err != nil {
		return nil, fmt.Errorf("invalid bookmark ID %q: %w", bookmarkID, apperrors.ErrInvalidArgument)
	}

	bookmark, err := s.repo.GetBookmarkByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	if bookmark.UserID != userID {
		return nil, fmt.Errorf("bookmark %s belongs to another user: %w", bookmarkID, apperrors.ErrForbidden)
	}

	return bookmark, nil
}

// DeleteBookmark removes a bookmark owned by the user.
func (s *BookmarkService) DeleteBookmark(ctx context.Context, userID primitive.ObjectID, bookmarkID string) error {
	bookmark, err := s.loadOwnedBookmark(ctx, userID, bookmarkID)
	if err != nil {
		return err
	}
	return s.repo.DeleteBookmark(ctx, bookmark.ID)
}

// PromoteBookmark turns a bookmark into a live checklist. The template is
// forked first; the bookmark is removed once the fork exists.
func (s *BookmarkService) PromoteBookmark(ctx context.Context, userID primitive.ObjectID, bookmarkID string) (*models.ChecklistResponse, error) {
	bookmark, err := s.loadOwnedBookmark(ctx, userID, bookmarkID)
	if err != nil {
		return nil, err
	}

	response, err := s.checklists.ForkTemplate(ctx, userID, bookmark.TemplateID.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to promote bookmark: %w", err)
	}

	if err := s.repo.DeleteBookmark(ctx, bookmark.ID); err != nil {
		// The fork already exists; losing the bookmark cleanup is recoverable.
		logrus.WithError(err).Warn("Failed to remove bookmark after promotion")
	}

	return response, nil
}
