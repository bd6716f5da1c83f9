package services

import (
	"context"
	"testing"

	"github.com/primerapp/primer/internal/models"
	"github.com/primerapp/primer/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name         string
		page         int
		pageSize     int
		wantPage     int
		wantPageSize int
	}{
		{"zero values fall back to defaults", 0, 0, 1, 20},
		{"negative values fall back to defaults", -3, -1, 1, 20},
		{"sane values pass through", 2, 50, 2, 50},
		{"oversized page size is capped", 1, 500, 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, pageSize := normalizePage(tt.page, tt.pageSize)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPageSize, pageSize)
		})
	}
}

func TestListTemplatesRejectsUnknownLocation(t *testing.T) {
	svc := NewTemplateService(nil)

	_, err := svc.ListTemplates(context.Background(), "US-NY", 1, 20)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestSearchTemplatesRequiresKeyword(t *testing.T) {
	svc := NewTemplateService(nil)

	_, err := svc.SearchTemplates(context.Background(), "   ", "", 1, 20)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	_, err = svc.SearchTemplates(context.Background(), "bank", "CN-XX", 1, 20)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestCreateTemplateRejectsInvalid(t *testing.T) {
	svc := NewTemplateService(nil)

	template := &models.Template{Title: "", LocationTag: "CN"}
	_, err := svc.CreateTemplate(context.Background(), template, primitive.NewObjectID(), "user")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestGetTemplateByIDRejectsMalformedID(t *testing.T) {
	svc := NewTemplateService(nil)

	_, err := svc.GetTemplateByID(context.Background(), "not-hex")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}
