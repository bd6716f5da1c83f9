package repository

import (
	"context"
	"time"

	"github.com/primerapp/primer/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BookmarkRepository struct {
	collection *mongo.Collection
}

func NewBookmarkRepository(db *mongo.Database) *BookmarkRepository {
	return &BookmarkRepository{collection: db.Collection("bookmarks")}
}

// CreateBookmark saves a template for later. The unique (user, template)
// index turns a second save of the same template into a conflict.
func (r *BookmarkRepository) CreateBookmark(ctx context.Context, bookmark *models.Bookmark) (*models.Bookmark, error) {
	bookmark.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, bookmark)
	if err != nil {
		return nil, wrapError("failed to create bookmark", err)
	}

	bookmark.ID = result.InsertedID.(primitive.ObjectID)
	return bookmark, nil
}

func (r *BookmarkRepository) GetBookmarkByID(ctx context.Context, id primitive.ObjectID) (*models.Bookmark, error) {
	var bookmark models.Bookmark
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&bookmark); err != nil {
		return nil, wrapError("failed to get bookmark", err)
	}
	return &bookmark, nil
}

// GetBookmarksByUser returns the user's bookmarks, newest first.
func (r *BookmarkRepository) GetBookmarksByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Bookmark, error) {
	var bookmarks []models.Bookmark

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, wrapError("failed to get bookmarks", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var bookmark models.Bookmark
		if err := cursor.Decode(&bookmark); err != nil {
			return nil, wrapError("failed to decode bookmark", err)
		}
		bookmarks = append(bookmarks, bookmark)
	}

	return bookmarks, nil
}

func (r *BookmarkRepository) DeleteBookmark(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapError("failed to delete bookmark", err)
	}
	return nil
}
