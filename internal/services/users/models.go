package users

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents a registered reader. The password hash never leaves the
// server: it is excluded from JSON and must stay excluded from any embedded
// copies of the user in other responses.
type User struct {
	ID             bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty" example:"683cdb8aa96ad71e8e075bd1"`
	Username       string        `bson:"username" json:"username" example:"bookworm42"`
	Email          string        `bson:"email" json:"email" example:"test@example.com"`
	PasswordHash   string        `bson:"password_hash" json:"-" example:"$2a$10$1234567890"`
	ProfilePicture string        `bson:"profile_picture" json:"profilePicture" example:"https://example.com/avatar.png"`
	CreatedAt      time.Time     `bson:"created_at" json:"createdAt" example:"2025-06-01T23:00:26.005703677Z"`
	UpdatedAt      time.Time     `bson:"updated_at" json:"updatedAt" example:"2025-06-01T23:00:26.005703677Z"`
}

// UpdateProfile represents the fields that can be changed on a profile
type UpdateProfile struct {
	Username       *string `json:"username,omitempty" validate:"omitempty,min=3,max=30" example:"bookworm43"`
	ProfilePicture *string `json:"profilePicture,omitempty" example:"https://example.com/avatar2.png"`
}
