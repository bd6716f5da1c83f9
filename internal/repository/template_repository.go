package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/primerapp/primer/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TemplateRepository struct {
	collection *mongo.Collection
}

func NewTemplateRepository(db *mongo.Database) *TemplateRepository {
	return &TemplateRepository{
		collection: db.Collection("templates"),
	}
}

func (r *TemplateRepository) CreateTemplate(ctx context.Context, template *models.Template) (*models.Template, error) {
	template.CreatedAt = time.Now()
	template.UpdatedAt = template.CreatedAt

	result, err := r.collection.InsertOne(ctx, template)
	if err != nil {
		return nil, wrapError("failed to insert template", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	template.ID = insertedID

	return template, nil
}

func (r *TemplateRepository) GetTemplateByID(ctx context.Context, id primitive.ObjectID) (*models.Template, error) {
	var template models.Template

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&template)
	if err != nil {
		return nil, wrapError("failed to fetch template by id", err)
	}

	return &template, nil
}

// ListTemplates returns a page of templates, newest first. A non-empty
// location narrows the result to that tag plus the nationwide "CN" fallback.
func (r *TemplateRepository) ListTemplates(ctx context.Context, location string, page, pageSize int64) ([]models.Template, error) {
	filter := bson.M{}
	if location != "" {
		filter["location_tag"] = bson.M{"$in": []string{location, "CN"}}
	}
	return r.findPage(ctx, filter, page, pageSize)
}

// SearchTemplates matches the keyword case-insensitively against title and
// description, with the same location and pagination rules as ListTemplates.
func (r *TemplateRepository) SearchTemplates(ctx context.Context, keyword, location string, page, pageSize int64) ([]models.Template, error) {
	filter := bson.M{}
	if keyword != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(keyword), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}
	if location != "" {
		filter["location_tag"] = bson.M{"$in": []string{location, "CN"}}
	}
	return r.findPage(ctx, filter, page, pageSize)
}

func (r *TemplateRepository) findPage(ctx context.Context, filter bson.M, page, pageSize int64) ([]models.Template, error) {
	var templates []models.Template

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * pageSize).
		SetLimit(pageSize)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapError("failed to fetch templates", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var template models.Template
		if err := cursor.Decode(&template); err != nil {
			return nil, wrapError("failed to decode template", err)
		}
		templates = append(templates, template)
	}

	return templates, nil
}

// GetTemplatesByUser fetches templates created by a specific user.
func (r *TemplateRepository) GetTemplatesByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Template, error) {
	var templates []models.Template

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"created_by": userID}, opts)
	if err != nil {
		return nil, wrapError("failed to fetch templates", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var template models.Template
		if err := cursor.Decode(&template); err != nil {
			return nil, wrapError("failed to decode template", err)
		}
		templates = append(templates, template)
	}

	return templates, nil
}

// GetAllTemplates returns every template, for admin views.
func (r *TemplateRepository) GetAllTemplates(ctx context.Context) ([]models.Template, error) {
	var templates []models.Template

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, wrapError("failed to fetch templates", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var template models.Template
		if err := cursor.Decode(&template); err != nil {
			return nil, wrapError("failed to decode template", err)
		}
		templates = append(templates, template)
	}

	return templates, nil
}
