// Package docs BookBurst API
//
// @title  BookBurst API
// @version 0.1.0
// @description Reading tracker: bookshelves, reviews, and community explore feeds.
// @host      localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package docs

import (
	_ "bookburst/cmd/server/handlers/httperr"
	_ "bookburst/internal/services/books"
	_ "bookburst/internal/services/bookshelf"
	_ "bookburst/internal/services/explore"
	_ "bookburst/internal/services/reviews"
	_ "bookburst/internal/services/users"
)
