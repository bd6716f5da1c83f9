package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bookmark marks a template the user wants to try later. Promoting a
// bookmark forks the template into a checklist and removes the bookmark.
// TemplateTitle is copied at save time so the list renders without joins.
type Bookmark struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        primitive.ObjectID `json:"user_id" bson:"user_id"`
	TemplateID    primitive.ObjectID `json:"template_id" bson:"template_id"`
	TemplateTitle string             `json:"template_title" bson:"template_title"`
	Note          string             `json:"note,omitempty" bson:"note,omitempty"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
}
