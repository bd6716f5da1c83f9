package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Checklist is a user's personal copy of a template. Title and steps are
// snapshotted at fork time, so later template edits never leak into an
// existing checklist. Progress is index-aligned with Steps: Progress[i]
// always refers to Steps[i].
type Checklist struct {
	ID               primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID           primitive.ObjectID `json:"user_id" bson:"user_id"`
	SourceTemplateID primitive.ObjectID `json:"source_template_id" bson:"source_template_id"`
	Title            string             `json:"title" bson:"title"`
	Steps            []TemplateStep     `json:"steps" bson:"steps"`
	Progress         []StepProgress     `json:"progress" bson:"progress"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`
}

// StepProgress records the completion state of one checklist step.
// CompletedAt is set exactly when Completed is true.
type StepProgress struct {
	StepIndex   int        `json:"step_index" bson:"step_index"`
	Completed   bool       `json:"completed" bson:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

// ChecklistProgress is the derived progress summary of a checklist. It is
// computed on every read and never persisted.
type ChecklistProgress struct {
	Steps              []StepProgress `json:"steps"`
	TotalSteps         int            `json:"total_steps"`
	CompletedSteps     int            `json:"completed_steps"`
	ProgressPercentage float64        `json:"progress_percentage"`
}

// ChecklistResponse pairs a checklist with its computed progress. Every
// endpoint that returns a checklist uses this shape.
type ChecklistResponse struct {
	Checklist *Checklist        `json:"checklist"`
	Progress  ChecklistProgress `json:"progress"`
}
