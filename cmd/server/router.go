package main

import (
	"context"
	"strings"
	"time"

	"bookburst/cmd/server/handlers"
	authHandlers "bookburst/cmd/server/handlers/auth"
	booksHandlers "bookburst/cmd/server/handlers/books"
	bookshelfHandlers "bookburst/cmd/server/handlers/bookshelf"
	exploreHandlers "bookburst/cmd/server/handlers/explore"
	"bookburst/cmd/server/handlers/httperr"
	reviewsHandlers "bookburst/cmd/server/handlers/reviews"
	usersHandlers "bookburst/cmd/server/handlers/users"
	"bookburst/cmd/server/middlewares"
	"bookburst/internal/clients/mongo"
	"bookburst/internal/config"
	"bookburst/internal/logger"
	booksServices "bookburst/internal/services/books"
	bookshelfServices "bookburst/internal/services/bookshelf"
	exploreServices "bookburst/internal/services/explore"
	reviewsServices "bookburst/internal/services/reviews"
	usersServices "bookburst/internal/services/users"

	_ "bookburst/docs" // Load swagger docs

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

const (
	RateLimitExpiration = 1 * time.Minute
)

// setupRouter configures and returns a Fiber app with all routes
func setupRouter(ctx context.Context, cfg config.Config) *fiber.App {

	v := validator.New()

	// Validate JWT algorithm at boot
	alg := strings.ToUpper(cfg.JWTAlgorithm)
	switch alg {
	case "HS256":
		// Valid algorithm
	default:
		logger.L().Error("unsupported JWT algorithm", "algorithm", cfg.JWTAlgorithm)
		panic("unsupported JWT algorithm: " + cfg.JWTAlgorithm)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: httperr.Handler,
		Immutable:    true, // make Fiber copy all request-derived strings
	})

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Content-Type, Authorization",
	}))

	if cfg.RouteMetricsEnabled {
		middlewares.AttachMetrics(app)
	}

	// Health check endpoint, outside versioned API to appease scanners and to avoid logging
	app.Get("/healthz", handlers.Healthz)

	app.Get("/docs/*", swagger.HandlerDefault)

	var v1 fiber.Router
	if cfg.RequestLoggingEnabled {
		v1 = app.Group("/api/v1", fiberlogger.New())
		logger.L().Info("request logging enabled")
	} else {
		v1 = app.Group("/api/v1")
		logger.L().Info("request logging disabled")
	}

	// Repositories
	usersRepo := mongo.NewUsersRepo(mongo.DB())
	booksRepo, err := mongo.NewBooksRepo(ctx, mongo.DB())
	if err != nil {
		logger.L().Error("failed to create books repository", "error", err)
		panic(err)
	}
	shelfRepo, err := mongo.NewBookshelfRepo(ctx, mongo.DB())
	if err != nil {
		logger.L().Error("failed to create bookshelf repository", "error", err)
		panic(err)
	}
	reviewsRepo, err := mongo.NewReviewsRepo(ctx, mongo.DB())
	if err != nil {
		logger.L().Error("failed to create reviews repository", "error", err)
		panic(err)
	}

	// Services
	usersSvc := usersServices.NewService(usersRepo, cfg, logger.L())
	booksSvc := booksServices.NewService(booksRepo, logger.L())
	shelfSvc := bookshelfServices.NewService(shelfRepo, booksSvc, logger.L())
	reviewsSvc := reviewsServices.NewService(reviewsRepo, booksSvc, usersRepo, logger.L())
	exploreSvc := exploreServices.NewService(shelfRepo, reviewsRepo, booksSvc, logger.L())

	authMiddleware := middlewares.Auth(cfg, usersSvc)

	limiterMW := middlewares.BuildRateLimiter(cfg.SignInRatePerMin, RateLimitExpiration)

	// Account routes
	authH := authHandlers.NewHandlers(usersSvc, v)
	usersH := usersHandlers.NewHandlers(usersSvc, shelfSvc, reviewsSvc, v)

	usersGrp := v1.Group("/users")
	usersGrp.Post("/register", limiterMW, authH.Register)
	usersGrp.Post("/login", limiterMW, authH.Login)
	usersGrp.Get("/profile", authMiddleware, usersH.Me)
	usersGrp.Put("/profile", authMiddleware, usersH.UpdateMe)
	usersGrp.Get("/:id/profile", usersH.PublicProfile)
	usersGrp.Get("/:id/reading-history", usersH.ReadingHistory)

	// Book catalog routes
	booksH := booksHandlers.NewHandlers(booksSvc, v)

	booksGrp := v1.Group("/books")
	booksGrp.Get("/search", booksH.Search)
	booksGrp.Get("/:id", booksH.Get)
	booksGrp.Post("/", authMiddleware, booksH.Create)

	// Bookshelf routes
	shelfH := bookshelfHandlers.NewHandlers(shelfSvc, v)

	shelfGrp := v1.Group("/bookshelf", authMiddleware)
	shelfGrp.Get("/", shelfH.List)
	shelfGrp.Post("/", shelfH.Add)
	shelfGrp.Put("/:id", shelfH.UpdateStatus)
	shelfGrp.Put("/:id/rating", shelfH.UpdateRating)
	shelfGrp.Put("/:id/notes", shelfH.UpdateNotes)
	shelfGrp.Delete("/:id", shelfH.Remove)

	// Review routes
	reviewsH := reviewsHandlers.NewHandlers(reviewsSvc, v)

	reviewsGrp := v1.Group("/reviews")
	reviewsGrp.Post("/", authMiddleware, reviewsH.Create)
	reviewsGrp.Get("/recent", reviewsH.Recent)
	reviewsGrp.Get("/book/:bookId", reviewsH.ByBook)
	reviewsGrp.Get("/user/:userId", reviewsH.ByUser)

	// Explore routes
	exploreH := exploreHandlers.NewHandlers(exploreSvc, v)

	exploreGrp := v1.Group("/explore")
	exploreGrp.Get("/trending", exploreH.Trending)
	exploreGrp.Get("/top-rated", exploreH.TopRated)
	exploreGrp.Get("/most-wishlisted", exploreH.MostWishlisted)
	exploreGrp.Get("/recent-reviews", reviewsH.Recent)
	exploreGrp.Get("/genres", exploreH.Genres)

	return app
}
