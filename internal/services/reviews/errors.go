package reviews

import "errors"

// ErrAlreadyReviewed is returned when the user has already reviewed the book.
var ErrAlreadyReviewed = errors.New("you have already reviewed this book")

// ErrCreateReview is returned when review creation fails.
var ErrCreateReview = errors.New("failed to create review")

// ErrListReviews is returned when review listing fails.
var ErrListReviews = errors.New("failed to list reviews")
