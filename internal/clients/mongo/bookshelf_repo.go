package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookburst/internal/logger"
	"bookburst/internal/services/bookshelf"
	"bookburst/internal/services/explore"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// BookshelfRepo implements the bookshelf.Repository interface for MongoDB.
// It also serves the shelf-side aggregations behind the explore rankings.
type BookshelfRepo struct {
	collection *mongo.Collection
}

// NewBookshelfRepo creates a new bookshelf repository
func NewBookshelfRepo(parentCtx context.Context, db *mongo.Database) (*BookshelfRepo, error) {
	collection := db.Collection("bookshelf_items")

	indexes := []mongo.IndexModel{
		// One shelf entry per (user, book) pair
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "book_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		// Shelf listings sort by recency
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "updated_at", Value: -1},
			},
		},
		// Trending aggregations group by book within a status
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "book_id", Value: 1},
			},
		},
	}

	ctx, cancel := context.WithTimeout(parentCtx, OpTimeout)
	defer cancel()

	for _, indexModel := range indexes {
		_, err := collection.Indexes().CreateOne(ctx, indexModel)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				logger.L().Debug("index already exists, continuing", "collection", "bookshelf_items")
			} else {
				logger.L().Error("failed to create index", "collection", "bookshelf_items", "error", err)
				return nil, fmt.Errorf("failed to create bookshelf_items collection index: %w", err)
			}
		}
	}

	return &BookshelfRepo{
		collection: collection,
	}, nil
}

// Create inserts a new shelf item. A duplicate (user, book) pair maps to
// bookshelf.ErrAlreadyInShelf.
func (r *BookshelfRepo) Create(ctx context.Context, item *bookshelf.Item) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, item)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookshelf.ErrAlreadyInShelf
		}
		return err
	}
	return nil
}

// FindByID finds a shelf item by ID. Returns (nil, nil) when no item matches.
func (r *BookshelfRepo) FindByID(ctx context.Context, id bson.ObjectID) (*bookshelf.Item, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByUserAndBook finds a user's shelf item for a book. Returns (nil, nil)
// when the book is not on the shelf.
func (r *BookshelfRepo) FindByUserAndBook(ctx context.Context, userID, bookID bson.ObjectID) (*bookshelf.Item, error) {
	return r.findOne(ctx, bson.M{"user_id": userID, "book_id": bookID})
}

func (r *BookshelfRepo) findOne(ctx context.Context, filter bson.M) (*bookshelf.Item, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var item bookshelf.Item
	err := r.collection.FindOne(ctx, filter).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListByUser returns a page of the user's items sorted by updated_at desc,
// plus the total matching count.
func (r *BookshelfRepo) ListByUser(ctx context.Context, userID bson.ObjectID, status bookshelf.Status, skip, limit int) ([]*bookshelf.Item, int64, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{"user_id": userID}
	if status != "" {
		filter["status"] = status
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	items, err := r.findMany(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListAllByUser returns every item for the user, updated_at desc.
func (r *BookshelfRepo) ListAllByUser(ctx context.Context, userID bson.ObjectID) ([]*bookshelf.Item, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	return r.findMany(ctx, bson.M{"user_id": userID}, opts)
}

// ListFinishedByUser returns finished items, most recently finished first.
// Items without a finish date fall back to update recency.
func (r *BookshelfRepo) ListFinishedByUser(ctx context.Context, userID bson.ObjectID) ([]*bookshelf.Item, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "finish_date", Value: -1},
		{Key: "updated_at", Value: -1},
	})
	filter := bson.M{"user_id": userID, "status": bookshelf.StatusFinished}
	return r.findMany(ctx, filter, opts)
}

// Update applies the patch and returns the updated item. A missing item maps
// to bookshelf.ErrItemNotFound.
func (r *BookshelfRepo) Update(ctx context.Context, id bson.ObjectID, patch bookshelf.UpdateItem) (*bookshelf.Item, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	set := bson.M{"updated_at": time.Now()}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Rating != nil {
		set["rating"] = *patch.Rating
	}
	if patch.Notes != nil {
		set["notes"] = *patch.Notes
	}
	if patch.StartDate != nil {
		set["start_date"] = *patch.StartDate
	}
	if patch.FinishDate != nil {
		set["finish_date"] = *patch.FinishDate
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var item bookshelf.Item
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookshelf.ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Delete removes a shelf item. A missing item maps to bookshelf.ErrItemNotFound.
func (r *BookshelfRepo) Delete(ctx context.Context, id bson.ObjectID) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return bookshelf.ErrItemNotFound
	}
	return nil
}

// CountByBook groups shelf items by book and returns a page of groups sorted
// by count descending, plus the total number of groups. bookIDs nil means no
// filter; an empty non-nil slice matches nothing.
func (r *BookshelfRepo) CountByBook(ctx context.Context, bookIDs []bson.ObjectID, status bookshelf.Status, skip, limit int64) ([]explore.BookCount, int64, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	match := bson.M{}
	if status != "" {
		match["status"] = status
	}
	if bookIDs != nil {
		match["book_id"] = bson.M{"$in": bookIDs}
	}

	group := bson.D{
		{Key: "$group", Value: bson.M{
			"_id":   "$book_id",
			"count": bson.M{"$sum": 1},
		}},
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		group,
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		bson.D{{Key: "$skip", Value: skip}},
		bson.D{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer func(ctxToClose context.Context) {
		if cerr := cursor.Close(ctxToClose); cerr != nil {
			logger.L().Error("failed to close cursor", "error", cerr)
		}
	}(ctx)

	var groups []explore.BookCount
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, 0, err
	}

	total, err := r.countGroups(ctx, match, group)
	if err != nil {
		return nil, 0, err
	}
	return groups, total, nil
}

// countGroups runs the same match+group and counts the resulting groups.
func (r *BookshelfRepo) countGroups(ctx context.Context, match bson.M, group bson.D) (int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		group,
		bson.D{{Key: "$count", Value: "total"}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer func(ctxToClose context.Context) {
		if cerr := cursor.Close(ctxToClose); cerr != nil {
			logger.L().Error("failed to close cursor", "error", cerr)
		}
	}(ctx)

	var results []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

func (r *BookshelfRepo) findMany(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]*bookshelf.Item, error) {
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

	var items []*bookshelf.Item
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}
