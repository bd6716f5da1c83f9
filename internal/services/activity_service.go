package services

import (
	"context"
	"time"

	"github.com/primerapp/primer/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

// ActivityStore is the durable home of the activity feed.
type ActivityStore interface {
	InsertActivity(ctx context.Context, activity *models.Activity) error
	ListUserActivities(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Activity, error)
}

type ActivityService struct {
	store ActivityStore
}

func NewActivityService(store ActivityStore) *ActivityService {
	return &ActivityService{store: store}
}

// LogActivity records one user action for the activity feed.
func (s *ActivityService) LogActivity(
	ctx context.Context,
	userID primitive.ObjectID,
	actionType string,
	targetID primitive.ObjectID,
	message string,
) error {
	activity := &models.Activity{
		UserID:    userID,
		Type:      actionType,
		TargetID:  targetID,
		Message:   message,
		Timestamp: time.Now(),
	}

	err := s.store.InsertActivity(ctx, activity)
	if err != nil {
		logrus.WithError(err).Error("Failed to log activity")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":     userID.Hex(),
		"action_type": actionType,
	}).Info("Activity logged")

	return nil
}

// GetRecentActivities returns recent actions performed by a user, newest
// first.
func (s *ActivityService) GetRecentActivities(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Activity, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	return s.store.ListUserActivities(ctx, userID, limit)
}
