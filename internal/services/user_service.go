package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/primerapp/primer/internal/models"
	"github.com/primerapp/primer/internal/repository"
	"github.com/primerapp/primer/pkg/apperrors"
	"github.com/primerapp/primer/pkg/email"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// profileFields are the only user fields a profile update may touch.
var profileFields = map[string]bool{
	"nickname":   true,
	"avatar_url": true,
	"home_city":  true,
}

// UserService encapsulates the business logic for user operations.
type UserService struct {
	repo *repository.UserRepository
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

// RegisterUser registers a new user after hashing their password.
func (s *UserService) RegisterUser(ctx context.Context, userEmail, password, nickname string) (*models.User, error) {
	logrus.Info("Registering new user")

	userEmail = strings.TrimSpace(userEmail)
	nickname = strings.TrimSpace(nickname)

	if !emailRegex.MatchString(userEmail) {
		logrus.WithField("email", userEmail).Warn("Invalid email format during registration")
		return nil, fmt.Errorf("invalid email format: %w", apperrors.ErrInvalidArgument)
	}

	if len(password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters: %w", apperrors.ErrInvalidArgument)
	}

	if nickname == "" || len(nickname) > models.MaxNicknameLen {
		return nil, fmt.Errorf("nickname must be between 1 and %d characters: %w", models.MaxNicknameLen, apperrors.ErrInvalidArgument)
	}

	// Check if the email is already registered. The unique index on email
	// catches the race either way.
	existingUser, _ := s.repo.GetUserByEmail(ctx, userEmail)
	if existingUser != nil {
		logrus.WithField("email", userEmail).Warn("Email already in use")
		return nil, fmt.Errorf("email already in use: %w", apperrors.ErrConflict)
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:          userEmail,
		HashedPassword: string(hashedPwd),
		Nickname:       nickname,
		Role:           "user",
		LastActiveAt:   time.Now(),
	}

	createdUser, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("User registration failed")
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	// The welcome mail is best-effort; registration succeeds without it.
	emailBody := fmt.Sprintf("Welcome to Primer, %s!\n\nPick a checklist for your city and start ticking off steps.", nickname)
	if err := email.SendEmail(createdUser.Email, "Welcome to Primer", emailBody); err != nil {
		logrus.WithError(err).Warn("Failed to send welcome email")
	}

	logrus.WithFields(logrus.Fields{
		"userID": createdUser.ID.Hex(),
		"role":   createdUser.Role,
	}).Info("User registered successfully")

	return createdUser, nil
}

// AuthenticateUser verifies the email and password and returns the user if credentials are valid.
func (s *UserService) AuthenticateUser(ctx context.Context, userEmail, password string) (*models.User, error) {
	logrus.WithField("email", userEmail).Info("Authenticating user")

	user, err := s.repo.GetUserByEmail(ctx, userEmail)
	if err != nil {
		logrus.WithField("email", userEmail).Warn("User not found")
		return nil, fmt.Errorf("invalid credentials: %w", apperrors.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("email", userEmail).Warn("Invalid credentials")
		return nil, fmt.Errorf("invalid credentials: %w", apperrors.ErrUnauthorized)
	}

	logrus.WithField("userID", user.ID.Hex()).Info("User authenticated successfully")
	return user, nil
}

// GetUser retrieves a user by their ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		logrus.WithError(err).Warn("Invalid user ID")
		return nil, fmt.Errorf("invalid user ID %q: %w", id, apperrors.ErrInvalidArgument)
	}

	user, err := s.repo.GetUserByID(ctx, objID)
	if err != nil {
		logrus.WithError(err).Warn("Failed to retrieve user")
		return nil, err
	}

	return user, nil
}

// UpdateProfile applies a partial profile update. Only nickname, avatar_url
// and home_city can change; anything else in the patch is dropped.
func (s *UserService) UpdateProfile(ctx context.Context, id string, updates map[string]interface{}) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		logrus.WithError(err).Warn("Invalid user ID")
		return nil, fmt.Errorf("invalid user ID %q: %w", id, apperrors.ErrInvalidArgument)
	}

	filtered := make(map[string]interface{})
	for field, value := range updates {
		if profileFields[field] {
			filtered[field] = value
		}
	}

	if len(filtered) == 0 {
		return nil, fmt.Errorf("no updatable fields in request: %w", apperrors.ErrInvalidArgument)
	}

	if nickname, ok := filtered["nickname"].(string); ok {
		nickname = strings.TrimSpace(nickname)
		if nickname == "" || len(nickname) > models.MaxNicknameLen {
			return nil, fmt.Errorf("nickname must be between 1 and %d characters: %w", models.MaxNicknameLen, apperrors.ErrInvalidArgument)
		}
		filtered["nickname"] = nickname
	}

	user, err := s.repo.UpdateUserFields(ctx, objID, filtered)
	if err != nil {
		logrus.WithError(err).Error("Failed to update user profile")
		return nil, err
	}

	logrus.WithField("userID", user.ID.Hex()).Info("User profile updated")
	return user, nil
}

// UpdateLastActive stamps the user's liveness marker.
func (s *UserService) UpdateLastActive(ctx context.Context, userID primitive.ObjectID) error {
	return s.repo.UpdateLastActive(ctx, userID)
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAllUsers(ctx)
}
