package bookshelf

import (
	"context"

	"bookburst/internal/services/books"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Repository defines the interface for bookshelf repository operations.
// FindByID and FindByUserAndBook return (nil, nil) when no item exists.
type Repository interface {
	Create(ctx context.Context, item *Item) error
	FindByID(ctx context.Context, id bson.ObjectID) (*Item, error)
	FindByUserAndBook(ctx context.Context, userID, bookID bson.ObjectID) (*Item, error)
	// ListByUser returns a page of the user's items sorted by updated_at desc,
	// plus the total matching count. An empty status means no status filter.
	ListByUser(ctx context.Context, userID bson.ObjectID, status Status, skip, limit int) ([]*Item, int64, error)
	// ListAllByUser returns every item for the user, updated_at desc.
	ListAllByUser(ctx context.Context, userID bson.ObjectID) ([]*Item, error)
	// ListFinishedByUser returns finished items, finish_date desc then updated_at desc.
	ListFinishedByUser(ctx context.Context, userID bson.ObjectID) ([]*Item, error)
	Update(ctx context.Context, id bson.ObjectID, patch UpdateItem) (*Item, error)
	Delete(ctx context.Context, id bson.ObjectID) error
}

// BookCatalog is the slice of the books service the shelf needs: resolving
// inline book input to a (possibly pre-existing) document, fetching by ID,
// and batch-fetching for the read-time join.
type BookCatalog interface {
	Get(ctx context.Context, id bson.ObjectID) (*books.Book, error)
	Resolve(ctx context.Context, input books.NewBookInput) (*books.Book, bool, error)
	ByIDs(ctx context.Context, ids []bson.ObjectID) ([]*books.Book, error)
}
