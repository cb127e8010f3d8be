package bookshelf

import (
	"time"

	"bookburst/internal/services/books"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Status is the reading state of a shelf item
type Status string

// Shelf statuses
const (
	StatusReading    Status = "reading"
	StatusFinished   Status = "finished"
	StatusWantToRead Status = "want-to-read"
)

// Item represents one book on one user's shelf. The (user, book) pair is
// unique: a book can appear on a shelf at most once.
type Item struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty" example:"683cdb8aa96ad71e8e075bd1"`
	UserID     bson.ObjectID `bson:"user_id" json:"userId" example:"683cdb8aa96ad71e8e075bd0"`
	BookID     bson.ObjectID `bson:"book_id" json:"bookId" example:"683cdb8aa96ad71e8e075bd2"`
	Status     Status        `bson:"status" json:"status" example:"reading"`
	Rating     *float64      `bson:"rating,omitempty" json:"rating,omitempty" example:"4.5"`
	Notes      string        `bson:"notes,omitempty" json:"notes,omitempty" example:"Slow start, great ending."`
	StartDate  *time.Time    `bson:"start_date,omitempty" json:"startDate,omitempty"`
	FinishDate *time.Time    `bson:"finish_date,omitempty" json:"finishDate,omitempty"`
	CreatedAt  time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time     `bson:"updated_at" json:"updatedAt"`
}

// ItemWithBook is an Item with its referenced book document joined in.
// The join happens at read time; the book is never stored inline.
type ItemWithBook struct {
	Item `bson:",inline"`
	Book *books.Book `bson:"-" json:"book"`
}

// UpdateItem represents the fields a partial update may touch. Start/finish
// dates are set by the service only when auto-population applies.
type UpdateItem struct {
	Status     *Status
	Rating     *float64
	Notes      *string
	StartDate  *time.Time
	FinishDate *time.Time
}

// HistoryGroup is one month of finished books in a reading history.
type HistoryGroup struct {
	Date  time.Time       `json:"date"`
	Books []*ItemWithBook `json:"books"`
}
