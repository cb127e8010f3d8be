package books

import "errors"

// ErrBookNotFound - book not found in DB
var ErrBookNotFound = errors.New("book not found")

// ErrQueryTooShort is returned when a search query trims to fewer than 2 characters.
var ErrQueryTooShort = errors.New("search query must be at least 2 characters")

// ErrCreateBook is returned when book creation fails.
var ErrCreateBook = errors.New("failed to create book")

// ErrSearchBooks is returned when book search fails.
var ErrSearchBooks = errors.New("failed to search books")
