package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/primerapp/primer/pkg/apperrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AllowedLocationTags is the set of location tags a template may carry.
// "CN" marks a nationwide guide; city tags narrow it down. City queries
// always include the "CN" fallback.
var AllowedLocationTags = map[string]bool{
	"CN":    true,
	"CN-BJ": true,
	"CN-SH": true,
	"CN-GZ": true,
	"CN-SZ": true,
}

const (
	MaxTemplateTitleLen       = 200
	MaxTemplateDescriptionLen = 2000
	MaxStepTitleLen           = 500
)

// Template is a public life-guide: an ordered list of steps for getting
// through some "first time" (renting an apartment, registering a company...).
// Templates are read-only once published; users fork them into checklists.
type Template struct {
	ID          primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Title       string              `json:"title" bson:"title"`
	Description string              `json:"description" bson:"description"`
	LocationTag string              `json:"location_tag" bson:"location_tag"`
	Steps       []TemplateStep      `json:"steps" bson:"steps"`
	ParentID    *primitive.ObjectID `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
	CreatedBy   primitive.ObjectID  `json:"created_by" bson:"created_by"`
	Official    bool                `json:"official" bson:"official"`
	CreatedAt   time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at" bson:"updated_at"`
}

// TemplateStep is a single step inside a template. Order values must be
// unique and contiguous starting from 0.
type TemplateStep struct {
	Title       string `json:"title" bson:"title"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Order       int    `json:"order" bson:"order"`
}

// Validate checks a template before it is persisted.
func (t *Template) Validate() error {
	title := strings.TrimSpace(t.Title)
	if title == "" || len(t.Title) > MaxTemplateTitleLen {
		return fmt.Errorf("title must be between 1 and %d characters: %w", MaxTemplateTitleLen, apperrors.ErrInvalidArgument)
	}
	desc := strings.TrimSpace(t.Description)
	if desc == "" || len(t.Description) > MaxTemplateDescriptionLen {
		return fmt.Errorf("description must be between 1 and %d characters: %w", MaxTemplateDescriptionLen, apperrors.ErrInvalidArgument)
	}
	if !AllowedLocationTags[t.LocationTag] {
		return fmt.Errorf("unknown location tag %q: %w", t.LocationTag, apperrors.ErrInvalidArgument)
	}
	if len(t.Steps) == 0 {
		return fmt.Errorf("template must have at least one step: %w", apperrors.ErrInvalidArgument)
	}
	seen := make(map[int]bool, len(t.Steps))
	for _, step := range t.Steps {
		if strings.TrimSpace(step.Title) == "" || len(step.Title) > MaxStepTitleLen {
			return fmt.Errorf("step title must be between 1 and %d characters: %w", MaxStepTitleLen, apperrors.ErrInvalidArgument)
		}
		if step.Order < 0 || step.Order >= len(t.Steps) || seen[step.Order] {
			return fmt.Errorf("step orders must be unique and contiguous from 0: %w", apperrors.ErrInvalidArgument)
		}
		seen[step.Order] = true
	}
	return nil
}
