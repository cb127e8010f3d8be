package mongo

import (
	"context"
	"errors"
	"time"

	"bookburst/internal/services/users"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// UsersRepo implements the users.Repository interface for MongoDB
type UsersRepo struct {
	collection *mongo.Collection
}

// NewUsersRepo creates a new users repository
func NewUsersRepo(db *mongo.Database) *UsersRepo {
	collection := db.Collection("users")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Ignore error if indexes already exist
	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &UsersRepo{
		collection: collection,
	}
}

// Create creates a new user in the database
func (r *UsersRepo) Create(ctx context.Context, user *users.User) error {
	ctx, cancel := WithRepoTimeout(ctx, OpTimeout)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return users.ErrDuplicate
		}
		return err
	}

	return nil
}

// FindByID finds a user by ID. Returns (nil, nil) when no user matches.
func (r *UsersRepo) FindByID(ctx context.Context, id bson.ObjectID) (*users.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByEmail finds a user by email address. Returns (nil, nil) when no user matches.
func (r *UsersRepo) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByUsername finds a user by username. Returns (nil, nil) when no user matches.
func (r *UsersRepo) FindByUsername(ctx context.Context, username string) (*users.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UsersRepo) findOne(ctx context.Context, filter bson.M) (*users.User, error) {
	ctx, cancel := WithRepoTimeout(ctx, OpTimeout)
	defer cancel()

	var user users.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

// UsernameInUse reports whether a user other than excludeID holds the username.
func (r *UsersRepo) UsernameInUse(ctx context.Context, username string, excludeID bson.ObjectID) (bool, error) {
	ctx, cancel := WithRepoTimeout(ctx, OpTimeout)
	defer cancel()

	filter := bson.M{
		"username": username,
		"_id":      bson.M{"$ne": excludeID},
	}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateProfile applies the patch to the user document and returns the
// updated document. Only fields set in the patch are touched.
func (r *UsersRepo) UpdateProfile(ctx context.Context, id bson.ObjectID, patch users.UpdateProfile) (*users.User, error) {
	ctx, cancel := WithRepoTimeout(ctx, OpTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Username != nil {
		set["username"] = *patch.Username
	}
	if patch.ProfilePicture != nil {
		set["profile_picture"] = *patch.ProfilePicture
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user users.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, users.ErrUserNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, users.ErrDuplicate
		}
		return nil, err
	}

	return &user, nil
}

// FindByIDs fetches the users matching the given IDs in no particular order.
func (r *UsersRepo) FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]*users.User, error) {
	if len(ids) == 0 {
		return []*users.User{}, nil
	}

	ctx, cancel := WithRepoTimeout(ctx, OpTimeout)
	defer cancel()

	cur, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	docs := make([]*users.User, 0, len(ids))
	for cur.Next(ctx) {
		var user users.User
		if err := cur.Decode(&user); err != nil {
			return nil, err
		}
		docs = append(docs, &user)
	}
	return docs, cur.Err()
}
