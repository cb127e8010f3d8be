package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookburst/internal/logger"
	"bookburst/internal/services/explore"
	"bookburst/internal/services/reviews"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ReviewsRepo implements the reviews.Repository interface for MongoDB.
// It also serves the rating aggregations behind the top-rated ranking.
type ReviewsRepo struct {
	collection *mongo.Collection
}

// NewReviewsRepo creates a new reviews repository
func NewReviewsRepo(parentCtx context.Context, db *mongo.Database) (*ReviewsRepo, error) {
	collection := db.Collection("reviews")

	indexes := []mongo.IndexModel{
		// One review per (user, book) pair
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "book_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		// Per-book listings sort newest-first
		{
			Keys: bson.D{
				{Key: "book_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		// Global feed sorts newest-first
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	ctx, cancel := context.WithTimeout(parentCtx, OpTimeout)
	defer cancel()

	for _, indexModel := range indexes {
		_, err := collection.Indexes().CreateOne(ctx, indexModel)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				logger.L().Debug("index already exists, continuing", "collection", "reviews")
			} else {
				logger.L().Error("failed to create index", "collection", "reviews", "error", err)
				return nil, fmt.Errorf("failed to create reviews collection index: %w", err)
			}
		}
	}

	return &ReviewsRepo{
		collection: collection,
	}, nil
}

// Create inserts a new review. A duplicate (user, book) pair maps to
// reviews.ErrAlreadyReviewed.
func (r *ReviewsRepo) Create(ctx context.Context, review *reviews.Review) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return reviews.ErrAlreadyReviewed
		}
		return err
	}
	return nil
}

// FindByUserAndBook finds a user's review of a book. Returns (nil, nil) when
// no review exists.
func (r *ReviewsRepo) FindByUserAndBook(ctx context.Context, userID, bookID bson.ObjectID) (*reviews.Review, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var review reviews.Review
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "book_id": bookID}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

// ListByBook returns a page of a book's reviews, newest first.
func (r *ReviewsRepo) ListByBook(ctx context.Context, bookID bson.ObjectID, skip, limit int) ([]*reviews.Review, int64, error) {
	return r.listPage(ctx, bson.M{"book_id": bookID}, skip, limit)
}

// ListByUser returns a page of a user's reviews, newest first.
func (r *ReviewsRepo) ListByUser(ctx context.Context, userID bson.ObjectID, skip, limit int) ([]*reviews.Review, int64, error) {
	return r.listPage(ctx, bson.M{"user_id": userID}, skip, limit)
}

// ListAllByUser returns every review by the user, newest first.
func (r *ReviewsRepo) ListAllByUser(ctx context.Context, userID bson.ObjectID) ([]*reviews.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.findMany(ctx, bson.M{"user_id": userID}, opts)
}

// ListRecent returns a page of the newest reviews. A non-nil bookIDs slice
// restricts the feed to those books; an empty non-nil slice matches nothing.
func (r *ReviewsRepo) ListRecent(ctx context.Context, bookIDs []bson.ObjectID, skip, limit int) ([]*reviews.Review, int64, error) {
	filter := bson.M{}
	if bookIDs != nil {
		filter["book_id"] = bson.M{"$in": bookIDs}
	}
	return r.listPage(ctx, filter, skip, limit)
}

func (r *ReviewsRepo) listPage(ctx context.Context, filter bson.M, skip, limit int) ([]*reviews.Review, int64, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	list, err := r.findMany(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// TopRatedBooks groups reviews by book, keeps groups with at least minCount
// ratings, and returns a page sorted by average rating descending, plus the
// total number of qualifying groups. bookIDs nil means no filter; an empty
// non-nil slice matches nothing.
func (r *ReviewsRepo) TopRatedBooks(ctx context.Context, bookIDs []bson.ObjectID, minCount, skip, limit int64) ([]explore.BookRating, int64, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	match := bson.M{"rating": bson.M{"$gt": 0}}
	if bookIDs != nil {
		match["book_id"] = bson.M{"$in": bookIDs}
	}

	// Averages stay unrounded; presentation decides precision.
	rank := []bson.D{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":        "$book_id",
			"avg_rating": bson.M{"$avg": "$rating"},
			"count":      bson.M{"$sum": 1},
		}}},
		{{Key: "$match", Value: bson.M{"count": bson.M{"$gte": minCount}}}},
	}

	pipeline := append(mongo.Pipeline{}, rank...)
	pipeline = append(pipeline,
		bson.D{{Key: "$sort", Value: bson.D{{Key: "avg_rating", Value: -1}, {Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		bson.D{{Key: "$skip", Value: skip}},
		bson.D{{Key: "$limit", Value: limit}},
	)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer func(ctxToClose context.Context) {
		if cerr := cursor.Close(ctxToClose); cerr != nil {
			logger.L().Error("failed to close cursor", "error", cerr)
		}
	}(ctx)

	var groups []explore.BookRating
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, 0, err
	}

	countPipeline := append(mongo.Pipeline{}, rank...)
	countPipeline = append(countPipeline, bson.D{{Key: "$count", Value: "total"}})

	total, err := r.countPipeline(ctx, countPipeline)
	if err != nil {
		return nil, 0, err
	}
	return groups, total, nil
}

func (r *ReviewsRepo) countPipeline(ctx context.Context, pipeline mongo.Pipeline) (int64, error) {
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

func (r *ReviewsRepo) findMany(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]*reviews.Review, error) {
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

	var list []*reviews.Review
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}
