package explore

import (
	"bookburst/internal/services/books"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// BookCount is one group from a count aggregation: a book and how many shelf
// items reference it.
type BookCount struct {
	BookID bson.ObjectID `bson:"_id"`
	Count  int64         `bson:"count"`
}

// BookRating is one group from the rating aggregation: a book, its average
// review rating, and how many ratings contributed.
type BookRating struct {
	BookID    bson.ObjectID `bson:"_id"`
	AvgRating float64       `bson:"avg_rating"`
	Count     int64         `bson:"count"`
}

// PageRequest represents a ranked-list request
type PageRequest struct {
	Page  int    `query:"page" validate:"omitempty,min=1" example:"1"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=100" example:"10"`
	Genre string `query:"genre" example:"Science Fiction"`
}

// BookListResponse is the paginated envelope for ranked book lists. Item
// order is the aggregate ranking order, not the batch-fetch order.
type BookListResponse struct {
	Items []*books.Book `json:"items"`
	Page  int           `json:"page" example:"1"`
	Pages int           `json:"pages" example:"3"`
	Total int64         `json:"total" example:"42"`
}
