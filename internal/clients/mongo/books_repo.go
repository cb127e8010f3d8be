package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"bookburst/internal/logger"
	"bookburst/internal/services/books"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// BooksRepo implements the books.Repository interface for MongoDB
type BooksRepo struct {
	collection *mongo.Collection
}

func repoCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return WithRepoTimeout(parent, OpTimeout)
}

// NewBooksRepo creates a new books repository
func NewBooksRepo(parentCtx context.Context, db *mongo.Database) (*BooksRepo, error) {
	collection := db.Collection("books")

	indexes := []mongo.IndexModel{
		// Text search index over the fields search queries touch
		{
			Keys: bson.D{
				{Key: "title", Value: "text"},
				{Key: "author", Value: "text"},
				{Key: "description", Value: "text"},
			},
		},
		// ISBN lookups drive de-duplication
		{
			Keys: bson.D{{Key: "isbn", Value: 1}},
		},
		// Genre membership queries power the explore filters
		{
			Keys: bson.D{{Key: "genre", Value: 1}},
		},
	}

	ctx, cancel := context.WithTimeout(parentCtx, OpTimeout)
	defer cancel()

	for _, indexModel := range indexes {
		_, err := collection.Indexes().CreateOne(ctx, indexModel)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				logger.L().Debug("index already exists, continuing", "collection", "books")
			} else {
				logger.L().Error("failed to create index", "collection", "books", "error", err)
				return nil, fmt.Errorf("failed to create books collection index: %w", err)
			}
		}
	}

	return &BooksRepo{
		collection: collection,
	}, nil
}

// Create creates a new book in the database
func (r *BooksRepo) Create(ctx context.Context, book *books.Book) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	now := time.Now()
	book.CreatedAt = now
	book.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, book)
	return err
}

// FindByID finds a book by ID. Returns (nil, nil) when no book matches.
func (r *BooksRepo) FindByID(ctx context.Context, id bson.ObjectID) (*books.Book, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByISBN finds a book by exact ISBN. Returns (nil, nil) when no book matches.
func (r *BooksRepo) FindByISBN(ctx context.Context, isbn string) (*books.Book, error) {
	return r.findOne(ctx, bson.M{"isbn": isbn})
}

// FindByTitleAuthor matches title and author exactly but case-insensitively.
// Returns (nil, nil) when no book matches.
func (r *BooksRepo) FindByTitleAuthor(ctx context.Context, title, author string) (*books.Book, error) {
	filter := bson.M{
		"title":  exactInsensitive(title),
		"author": exactInsensitive(author),
	}
	return r.findOne(ctx, filter)
}

// exactInsensitive builds an anchored case-insensitive regex so "dune"
// matches "Dune" but not "Dune Messiah".
func exactInsensitive(s string) bson.M {
	return bson.M{"$regex": "^" + regexp.QuoteMeta(s) + "$", "$options": "i"}
}

func (r *BooksRepo) findOne(ctx context.Context, filter bson.M) (*books.Book, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var book books.Book
	err := r.collection.FindOne(ctx, filter).Decode(&book)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &book, nil
}

// TextSearch runs a full-text query sorted by relevance score.
func (r *BooksRepo) TextSearch(ctx context.Context, q string, limit int) ([]*books.Book, error) {
	filter := bson.M{"$text": bson.M{"$search": q}}
	opts := options.Find().
		SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetSort(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetLimit(int64(limit))
	return r.findMany(ctx, filter, opts)
}

// SubstringSearch is the fallback when text search finds nothing: a
// case-insensitive substring match across title, author, and ISBN.
func (r *BooksRepo) SubstringSearch(ctx context.Context, q string, limit int) ([]*books.Book, error) {
	pattern := bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
	filter := bson.M{"$or": []bson.M{
		{"title": pattern},
		{"author": pattern},
		{"isbn": pattern},
	}}
	opts := options.Find().SetLimit(int64(limit))
	return r.findMany(ctx, filter, opts)
}

// FindByIDs batch-fetches books. Result order is not the input order.
func (r *BooksRepo) FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]*books.Book, error) {
	if len(ids) == 0 {
		return []*books.Book{}, nil
	}
	return r.findMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

// FindIDsByGenre returns the IDs of every book tagged with the genre.
func (r *BooksRepo) FindIDsByGenre(ctx context.Context, genre string) ([]bson.ObjectID, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{"genre": bson.M{"$in": []string{genre}}}
	opts := options.Find().SetProjection(bson.M{"_id": 1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func(ctxToClose context.Context) {
		if cerr := cursor.Close(ctxToClose); cerr != nil {
			logger.L().Error("failed to close cursor", "error", cerr)
		}
	}(ctx)

	var docs []struct {
		ID bson.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]bson.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// FindWithGenres returns every book carrying at least one genre.
func (r *BooksRepo) FindWithGenres(ctx context.Context) ([]*books.Book, error) {
	filter := bson.M{"genre": bson.M{
		"$exists": true,
		"$not":    bson.M{"$size": 0},
	}}
	opts := options.Find().SetProjection(bson.M{"genre": 1})
	return r.findMany(ctx, filter, opts)
}

func (r *BooksRepo) findMany(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]*books.Book, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func(ctxToClose context.Context) {
		if cerr := cursor.Close(ctxToClose); cerr != nil {
			logger.L().Error("failed to close cursor", "error", cerr)
		}
	}(ctx)

	var list []*books.Book
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}
