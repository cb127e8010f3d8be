package reviews

import (
	"time"

	"bookburst/internal/services/books"
	"bookburst/internal/services/users"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Review represents one user's review of one book. The (user, book) pair is
// unique: a reader reviews a book at most once.
type Review struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty" example:"683cdb8aa96ad71e8e075bd1"`
	UserID    bson.ObjectID `bson:"user_id" json:"userId" example:"683cdb8aa96ad71e8e075bd0"`
	BookID    bson.ObjectID `bson:"book_id" json:"bookId" example:"683cdb8aa96ad71e8e075bd2"`
	Rating    int           `bson:"rating" json:"rating" example:"4"`
	Content   string        `bson:"content" json:"content" example:"Couldn't put it down."`
	Recommend bool          `bson:"recommend" json:"recommend" example:"true"`
	CreatedAt time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updatedAt"`
}

// ReviewWithRefs is a Review with its user and book joined in at read time.
// The user's password hash is excluded by the users.User JSON mapping.
type ReviewWithRefs struct {
	Review `bson:",inline"`
	User   *users.User `bson:"-" json:"user"`
	Book   *books.Book `bson:"-" json:"book"`
}
