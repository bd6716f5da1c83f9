package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/primerapp/primer/internal/models"
	"github.com/primerapp/primer/pkg/apperrors"
	"github.com/primerapp/primer/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChecklistRepository handles database operations related to checklists.
type ChecklistRepository struct {
	collection *mongo.Collection
}

// NewChecklistRepository creates a new instance of ChecklistRepository.
func NewChecklistRepository(db *mongo.Database) *ChecklistRepository {
	return &ChecklistRepository{
		collection: db.Collection("checklists"),
	}
}

// InsertChecklist stores a freshly forked checklist.
func (r *ChecklistRepository) InsertChecklist(ctx context.Context, checklist *models.Checklist) (*models.Checklist, error) {
	checklist.CreatedAt = time.Now()
	checklist.UpdatedAt = checklist.CreatedAt

	result, err := r.collection.InsertOne(ctx, checklist)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert checklist")
		return nil, wrapError("failed to insert checklist", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted ID")
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	checklist.ID = insertedID

	logger.Log.WithField("checklist_id", checklist.ID.Hex()).Info("Checklist created successfully")
	return checklist, nil
}

// GetChecklistByID fetches a checklist by its ID.
func (r *ChecklistRepository) GetChecklistByID(ctx context.Context, id primitive.ObjectID) (*models.Checklist, error) {
	var checklist models.Checklist

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&checklist)
	if err != nil {
		return nil, wrapError("failed to fetch checklist", err)
	}

	return &checklist, nil
}

// UpdateStepProgress flips the completion flag of a single step. Only the
// targeted progress entry and updated_at are written, so concurrent updates
// to different steps of the same checklist never overwrite each other.
func (r *ChecklistRepository) UpdateStepProgress(ctx context.Context, id primitive.ObjectID, stepIndex int, completed bool, completedAt *time.Time, updatedAt time.Time) (*models.Checklist, error) {
	completedField := fmt.Sprintf("progress.%d.completed", stepIndex)
	completedAtField := fmt.Sprintf("progress.%d.completed_at", stepIndex)

	set := bson.M{
		completedField: completed,
		"updated_at":   updatedAt,
	}
	update := bson.M{"$set": set}
	if completedAt != nil {
		set[completedAtField] = *completedAt
	} else {
		update["$unset"] = bson.M{completedAtField: ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Checklist
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated)
	if err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"checklist_id": id.Hex(),
			"step_index":   stepIndex,
		}).Error("Failed to update step progress")
		return nil, wrapError("failed to update step progress", err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"checklist_id": id.Hex(),
		"step_index":   stepIndex,
	}).Info("Step progress updated successfully")
	return &updated, nil
}

// ListChecklistsByUser fetches a user's checklists, newest first.
func (r *ChecklistRepository) ListChecklistsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Checklist, error) {
	var checklists []models.Checklist

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to fetch checklists")
		return nil, wrapError("failed to fetch checklists", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var checklist models.Checklist
		if err := cursor.Decode(&checklist); err != nil {
			return nil, wrapError("failed to decode checklist", err)
		}
		checklists = append(checklists, checklist)
	}

	return checklists, nil
}

// DeleteChecklist removes a checklist by its ID.
func (r *ChecklistRepository) DeleteChecklist(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Log.WithError(err).WithField("checklist_id", id.Hex()).Error("Failed to delete checklist")
		return wrapError("failed to delete checklist", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("failed to delete checklist: %w", apperrors.ErrNotFound)
	}

	logger.Log.WithField("checklist_id", id.Hex()).Info("Checklist deleted successfully")
	return nil
}

// GetAllChecklists fetches checklists across all users, for admin views.
func (r *ChecklistRepository) GetAllChecklists(ctx context.Context, limit int64) ([]models.Checklist, error) {
	var checklists []models.Checklist

	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, wrapError("failed to fetch all checklists", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var checklist models.Checklist
		if err := cursor.Decode(&checklist); err != nil {
			return nil, wrapError("failed to decode checklist", err)
		}
		checklists = append(checklists, checklist)
	}

	return checklists, nil
}

// ListStaleChecklists fetches checklists not touched since the cutoff.
// Completion is derived, so the caller filters out finished ones.
func (r *ChecklistRepository) ListStaleChecklists(ctx context.Context, cutoff time.Time, limit int64) ([]models.Checklist, error) {
	var checklists []models.Checklist

	filter := bson.M{"updated_at": bson.M{"$lte": cutoff}}
	findOptions := options.Find().SetSort(bson.D{{Key: "updated_at", Value: 1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, wrapError("failed to fetch stale checklists", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &checklists); err != nil {
		return nil, wrapError("failed to decode stale checklists", err)
	}
	return checklists, nil
}
