package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/primerapp/primer/internal/models"
	"github.com/primerapp/primer/internal/repository"
	"github.com/primerapp/primer/pkg/apperrors"
	"github.com/primerapp/primer/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
)

// TemplateService handles the template catalog.
type TemplateService struct {
	repo *repository.TemplateRepository
}

// NewTemplateService creates a new instance of TemplateService.
func NewTemplateService(repo *repository.TemplateRepository) *TemplateService {
	return &TemplateService{repo: repo}
}

// normalizePage clamps paging parameters to sane values.
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// CreateTemplate validates and stores a new template. Templates created by
// admins are marked official.
func (s *TemplateService) CreateTemplate(ctx context.Context, template *models.Template, creatorID primitive.ObjectID, creatorRole string) (*models.Template, error) {
	if err := template.Validate(); err != nil {
		return nil, err
	}

	template.CreatedBy = creatorID
	template.Official = creatorRole == "admin"

	created, err := s.repo.CreateTemplate(ctx, template)
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"template_id":  created.ID.Hex(),
		"location_tag": created.LocationTag,
		"official":     created.Official,
	}).Info("Template created")

	return created, nil
}

// GetTemplateByID retrieves a single template by ID.
func (s *TemplateService) GetTemplateByID(ctx context.Context, id string) (*models.Template, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid template ID %q: %w", id, apperrors.ErrInvalidArgument)
	}
	return s.repo.GetTemplateByID(ctx, objID)
}

// ListTemplates returns a page of templates. A city tag narrows the catalog
// to that city plus the country-wide entries.
func (s *TemplateService) ListTemplates(ctx context.Context, location string, page, pageSize int) ([]models.Template, error) {
	location = strings.TrimSpace(location)
	if location != "" {
		if _, ok := models.AllowedLocationTags[location]; !ok {
			return nil, fmt.Errorf("unknown location tag %q: %w", location, apperrors.ErrInvalidArgument)
		}
	}

	page, pageSize = normalizePage(page, pageSize)
	return s.repo.ListTemplates(ctx, location, int64(page), int64(pageSize))
}

// SearchTemplates finds templates whose title or description contains the
// keyword, case-insensitively.
func (s *TemplateService) SearchTemplates(ctx context.Context, keyword, location string, page, pageSize int) ([]models.Template, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("search keyword must not be empty: %w", apperrors.ErrInvalidArgument)
	}

	location = strings.TrimSpace(location)
	if location != "" {
		if _, ok := models.AllowedLocationTags[location]; !ok {
			return nil, fmt.Errorf("unknown location tag %q: %w", location, apperrors.ErrInvalidArgument)
		}
	}

	page, pageSize = normalizePage(page, pageSize)
	return s.repo.SearchTemplates(ctx, keyword, location, int64(page), int64(pageSize))
}

// GetTemplatesByUser returns every template created by the given user.
func (s *TemplateService) GetTemplatesByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Template, error) {
	return s.repo.GetTemplatesByUser(ctx, userID)
}

// GetAllTemplates lists the full catalog, for admin views.
func (s *TemplateService) GetAllTemplates(ctx context.Context) ([]models.Template, error) {
	return s.repo.GetAllTemplates(ctx)
}
