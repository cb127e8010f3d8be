package reviews

import (
	"context"

	"bookburst/internal/services/books"
	"bookburst/internal/services/users"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Repository defines the interface for review repository operations. List
// methods sort newest-first and return the total matching count alongside the
// page. FindByUserAndBook returns (nil, nil) when no review exists.
type Repository interface {
	Create(ctx context.Context, review *Review) error
	FindByUserAndBook(ctx context.Context, userID, bookID bson.ObjectID) (*Review, error)
	ListByBook(ctx context.Context, bookID bson.ObjectID, skip, limit int) ([]*Review, int64, error)
	ListByUser(ctx context.Context, userID bson.ObjectID, skip, limit int) ([]*Review, int64, error)
	// ListAllByUser returns the user's reviews unpaginated (profile view).
	ListAllByUser(ctx context.Context, userID bson.ObjectID) ([]*Review, error)
	// ListRecent returns the newest reviews globally; a non-nil bookIDs slice
	// restricts to those books (empty slice matches nothing).
	ListRecent(ctx context.Context, bookIDs []bson.ObjectID, skip, limit int) ([]*Review, int64, error)
}

// BookCatalog is the slice of the books service reviews need.
type BookCatalog interface {
	Get(ctx context.Context, id bson.ObjectID) (*books.Book, error)
	ByIDs(ctx context.Context, ids []bson.ObjectID) ([]*books.Book, error)
	IDsByGenre(ctx context.Context, genre string) ([]bson.ObjectID, error)
}

// UserDirectory batch-fetches users for the read-time join.
type UserDirectory interface {
	FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]*users.User, error)
}
