package users

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ErrDuplicate is returned when a unique index rejects a user document
var ErrDuplicate = errors.New("user with this email or username already exists")

// Repository defines the interface for user repository operations
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id bson.ObjectID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	// UsernameInUse reports whether another user (excluding excludeID) holds the username.
	UsernameInUse(ctx context.Context, username string, excludeID bson.ObjectID) (bool, error)
	UpdateProfile(ctx context.Context, id bson.ObjectID, patch UpdateProfile) (*User, error)
}
