package reviews

import (
	"context"
	"errors"

	"bookburst/cmd/server/handlers/handlerutil"
	"bookburst/cmd/server/handlers/httperr"
	"bookburst/internal/logger"
	"bookburst/internal/services/books"
	"bookburst/internal/services/reviews"
	"bookburst/internal/services/users"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service defines the interface for review operations
type Service interface {
	Create(ctx context.Context, userID bson.ObjectID, req reviews.CreateReviewRequest) (*reviews.ReviewWithRefs, error)
	ByBook(ctx context.Context, bookID bson.ObjectID, req reviews.ListRequest) (*reviews.ListResponse, error)
	ByUser(ctx context.Context, userID bson.ObjectID, req reviews.ListRequest) (*reviews.ListResponse, error)
	Recent(ctx context.Context, req reviews.RecentRequest) (*reviews.ListResponse, error)
}

// Handlers contains the review HTTP handlers
type Handlers struct {
	service   Service
	validator *validator.Validate
}

// NewHandlers creates new review handlers
func NewHandlers(service Service, validator *validator.Validate) *Handlers {
	return &Handlers{
		service:   service,
		validator: validator,
	}
}

// Create handles review creation
// @Summary Review a book
// @Tags reviews
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body reviews.CreateReviewRequest true "New review"
// @Success 201 {object} reviews.ReviewResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /reviews [post]
func (h *Handlers) Create(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req reviews.CreateReviewRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Create"); err != nil {
		return err
	}

	review, err := h.service.Create(c.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, reviews.ErrAlreadyReviewed):
			return httperr.Fail(httperr.Conflict(err.Error()))
		case errors.Is(err, books.ErrBookNotFound):
			return handlerutil.NotFoundError(err)
		}
		logger.L().Error("review create failed", "handler", "Create", "userID", userID.Hex(), "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	return c.Status(201).JSON(reviews.ReviewResponse{Review: review})
}

// ByBook handles per-book review listing
// @Summary List a book's reviews
// @Tags reviews
// @Produce json
// @Param bookId path string true "Book ID"
// @Param page query int false "Page (default 1)" minimum(1)
// @Param limit query int false "Page size (default 10, max 100)" minimum(1) maximum(100)
// @Success 200 {object} reviews.ListResponse
// @Failure 404 {object} httperr.E
// @Router /reviews/book/{bookId} [get]
func (h *Handlers) ByBook(c *fiber.Ctx) error {
	bookID, err := handlerutil.ExtractID(c, "bookId", "ByBook", books.ErrBookNotFound)
	if err != nil {
		return err
	}

	var req reviews.ListRequest
	if err := handlerutil.ParseAndValidateQuery(c, &req, h.validator, "ByBook"); err != nil {
		return err
	}

	resp, err := h.service.ByBook(c.Context(), bookID, req)
	if err != nil {
		logger.L().Error("review listing failed", "handler", "ByBook", "bookID", bookID.Hex(), "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	return c.JSON(resp)
}

// ByUser handles per-user review listing
// @Summary List a user's reviews
// @Tags reviews
// @Produce json
// @Param userId path string true "User ID"
// @Param page query int false "Page (default 1)" minimum(1)
// @Param limit query int false "Page size (default 10, max 100)" minimum(1) maximum(100)
// @Success 200 {object} reviews.ListResponse
// @Failure 404 {object} httperr.E
// @Router /reviews/user/{userId} [get]
func (h *Handlers) ByUser(c *fiber.Ctx) error {
	userID, err := handlerutil.ExtractID(c, "userId", "ByUser", users.ErrUserNotFound)
	if err != nil {
		return err
	}

	var req reviews.ListRequest
	if err := handlerutil.ParseAndValidateQuery(c, &req, h.validator, "ByUser"); err != nil {
		return err
	}

	resp, err := h.service.ByUser(c.Context(), userID, req)
	if err != nil {
		logger.L().Error("review listing failed", "handler", "ByUser", "userID", userID.Hex(), "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	return c.JSON(resp)
}

// Recent handles the community review feed
// @Summary List the newest reviews across all books
// @Tags reviews
// @Produce json
// @Param page query int false "Page (default 1)" minimum(1)
// @Param limit query int false "Page size (default 10, max 100)" minimum(1) maximum(100)
// @Param genre query string false "Restrict to books tagged with this genre"
// @Success 200 {object} reviews.ListResponse
// @Failure 400 {object} httperr.E
// @Router /reviews/recent [get]
func (h *Handlers) Recent(c *fiber.Ctx) error {
	var req reviews.RecentRequest
	if err := handlerutil.ParseAndValidateQuery(c, &req, h.validator, "Recent"); err != nil {
		return err
	}

	resp, err := h.service.Recent(c.Context(), req)
	if err != nil {
		logger.L().Error("recent reviews failed", "handler", "Recent", "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	return c.JSON(resp)
}
