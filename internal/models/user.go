package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxNicknameLen caps the display name length.
const MaxNicknameLen = 50

// User represents a registered account. The password hash never leaves
// the server: it is excluded from JSON on every response.
type User struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email          string             `json:"email" bson:"email"`
	HashedPassword string             `json:"-" bson:"hashed_password"`
	Nickname       string             `json:"nickname" bson:"nickname"`
	AvatarURL      string             `json:"avatar_url,omitempty" bson:"avatar_url,omitempty"`
	HomeCity       string             `json:"home_city,omitempty" bson:"home_city,omitempty"`
	Role           string             `json:"role" bson:"role"`
	LastActiveAt   time.Time          `json:"last_active_at" bson:"last_active_at"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

// PublicUser is the safe view of another user's profile.
type PublicUser struct {
	ID        primitive.ObjectID `json:"id"`
	Nickname  string             `json:"nickname"`
	AvatarURL string             `json:"avatar_url,omitempty"`
	HomeCity  string             `json:"home_city,omitempty"`
}

// Public returns the shareable view of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Nickname:  u.Nickname,
		AvatarURL: u.AvatarURL,
		HomeCity:  u.HomeCity,
	}
}
