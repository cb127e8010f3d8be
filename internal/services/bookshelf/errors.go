package bookshelf

import "errors"

// ErrItemNotFound - shelf item not found in DB
var ErrItemNotFound = errors.New("bookshelf item not found")

// ErrNotOwner is returned when the requester does not own the shelf item.
var ErrNotOwner = errors.New("not authorized to modify this bookshelf item")

// ErrAlreadyInShelf is returned when the (user, book) pair already exists,
// whether caught by the pre-check or by the unique index.
var ErrAlreadyInShelf = errors.New("this book is already in your bookshelf")

// ErrBookRequired is returned when an add request carries neither a book ID
// nor inline book details.
var ErrBookRequired = errors.New("either bookId or book details are required")

// ErrListItems is returned when shelf listing fails.
var ErrListItems = errors.New("failed to list bookshelf")

// ErrAddItem is returned when adding to the shelf fails.
var ErrAddItem = errors.New("failed to add book to bookshelf")

// ErrUpdateItem is returned when a shelf item update fails.
var ErrUpdateItem = errors.New("failed to update bookshelf item")

// ErrRemoveItem is returned when removing a shelf item fails.
var ErrRemoveItem = errors.New("failed to remove bookshelf item")
