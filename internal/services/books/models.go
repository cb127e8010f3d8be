package books

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Book represents a catalog entry. Books are shared across users and
// de-duplicated at creation time, so two readers shelving the same title end
// up referencing one document.
type Book struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty" example:"683cdb8aa96ad71e8e075bd1"`
	Title         string        `bson:"title" json:"title" example:"Dune"`
	Author        string        `bson:"author" json:"author" example:"Frank Herbert"`
	Description   string        `bson:"description" json:"description" example:"A desert planet, a spice, a prophecy."`
	CoverImage    string        `bson:"cover_image" json:"coverImage" example:"https://example.com/dune.jpg"`
	ISBN          string        `bson:"isbn" json:"isbn" example:"9780441013593"`
	PageCount     int           `bson:"page_count,omitempty" json:"pageCount,omitempty" example:"412"`
	PublishedDate *time.Time    `bson:"published_date,omitempty" json:"publishedDate,omitempty"`
	Publisher     string        `bson:"publisher" json:"publisher" example:"Ace Books"`
	Genre         []string      `bson:"genre" json:"genre" example:"Science Fiction,Classics"`
	CreatedAt     time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updated_at" json:"updatedAt"`
}

// NewBookInput carries the fields accepted when creating a book, either via
// POST /books or inline in an add-to-bookshelf request.
type NewBookInput struct {
	Title         string     `json:"title" validate:"required" example:"Dune"`
	Author        string     `json:"author" validate:"required" example:"Frank Herbert"`
	Description   string     `json:"description" example:"A desert planet, a spice, a prophecy."`
	CoverImage    string     `json:"coverImage" example:"https://example.com/dune.jpg"`
	ISBN          string     `json:"isbn" example:"9780441013593"`
	PageCount     int        `json:"pageCount" validate:"omitempty,min=1" example:"412"`
	PublishedDate *time.Time `json:"publishedDate"`
	Publisher     string     `json:"publisher" example:"Ace Books"`
	Genre         []string   `json:"genre" example:"Science Fiction,Classics"`
}
