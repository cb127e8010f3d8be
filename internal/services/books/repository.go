package books

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Repository defines the interface for book repository operations.
// Single-document lookups return (nil, nil) when no match exists; errors are
// reserved for storage failures.
type Repository interface {
	Create(ctx context.Context, book *Book) error
	FindByID(ctx context.Context, id bson.ObjectID) (*Book, error)
	FindByISBN(ctx context.Context, isbn string) (*Book, error)
	// FindByTitleAuthor matches title and author exactly, case-insensitively.
	FindByTitleAuthor(ctx context.Context, title, author string) (*Book, error)
	// TextSearch runs full-text search over title/author/description sorted by
	// text score; SubstringSearch is the case-insensitive fallback across
	// title/author/isbn. Both cap results at limit.
	TextSearch(ctx context.Context, q string, limit int) ([]*Book, error)
	SubstringSearch(ctx context.Context, q string, limit int) ([]*Book, error)
	// FindByIDs batch-fetches books; result order is storage-defined, callers
	// that care about order must re-sort.
	FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]*Book, error)
	FindIDsByGenre(ctx context.Context, genre string) ([]bson.ObjectID, error)
	// FindWithGenres returns every book whose genre list is non-empty.
	FindWithGenres(ctx context.Context) ([]*Book, error)
}
