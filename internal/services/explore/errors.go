package explore

import "errors"

var (
	// ErrListBooks is returned when a ranked list could not be computed.
	ErrListBooks = errors.New("failed to list books")
	// ErrListGenres is returned when the genre catalog could not be read.
	ErrListGenres = errors.New("failed to list genres")
)
