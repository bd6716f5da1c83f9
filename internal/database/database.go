package database

import (
	"context"
	"fmt"
	"time"

	"github.com/primerapp/primer/internal/config"
	"github.com/primerapp/primer/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectDB establishes the MongoDB connection and verifies it with a ping.
func ConnectDB(cfg *config.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	logger.Log.WithField("database", cfg.MongoDBName).Info("Connected to MongoDB")
	return client.Database(cfg.MongoDBName), nil
}

// EnsureIndexes creates the indexes the queries rely on. It runs at startup
// and aborts the boot when index creation fails.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []struct {
		collection string
		model      mongo.IndexModel
	}{
		{
			collection: "users",
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		{
			collection: "templates",
			model: mongo.IndexModel{
				Keys: bson.D{{Key: "location_tag", Value: 1}, {Key: "created_at", Value: -1}},
			},
		},
		{
			collection: "checklists",
			model: mongo.IndexModel{
				Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			},
		},
		{
			// Backs the daily stale-checklist scan.
			collection: "checklists",
			model: mongo.IndexModel{
				Keys: bson.D{{Key: "updated_at", Value: 1}},
			},
		},
		{
			collection: "bookmarks",
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "template_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		{
			collection: "notifications",
			model: mongo.IndexModel{
				Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			},
		},
		{
			// Backs the expiry purge and the unexpired-only listing filter.
			collection: "notifications",
			model: mongo.IndexModel{
				Keys: bson.D{{Key: "expires_at", Value: 1}},
			},
		},
		{
			collection: "activities",
			model: mongo.IndexModel{
				Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
			},
		},
	}

	for _, idx := range indexes {
		if _, err := db.Collection(idx.collection).Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("failed to create index on %s: %v", idx.collection, err)
		}
	}

	logger.Log.Info("Database indexes ensured")
	return nil
}
