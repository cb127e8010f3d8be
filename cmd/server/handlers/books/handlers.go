package books

import (
	"context"
	"errors"

	"bookburst/cmd/server/handlers/handlerutil"
	"bookburst/cmd/server/handlers/httperr"
	"bookburst/internal/logger"
	"bookburst/internal/services/books"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service defines the interface for the book catalog
type Service interface {
	Get(ctx context.Context, id bson.ObjectID) (*books.Book, error)
	Search(ctx context.Context, q string) ([]*books.Book, error)
	Resolve(ctx context.Context, input books.NewBookInput) (*books.Book, bool, error)
}

// SearchResponse wraps search results
type SearchResponse struct {
	Items []*books.Book `json:"items"`
}

// Handlers contains the book catalog HTTP handlers
type Handlers struct {
	service   Service
	validator *validator.Validate
}

// NewHandlers creates new book handlers
func NewHandlers(service Service, validator *validator.Validate) *Handlers {
	return &Handlers{
		service:   service,
		validator: validator,
	}
}

// Search handles catalog search
// @Summary Search books by title, author, or ISBN
// @Tags books
// @Produce json
// @Param q query string true "Search query (min 2 characters after trimming)"
// @Success 200 {object} SearchResponse
// @Failure 400 {object} httperr.E
// @Router /books/search [get]
func (h *Handlers) Search(c *fiber.Ctx) error {
	q := c.Query("q")

	items, err := h.service.Search(c.Context(), q)
	if err != nil {
		if errors.Is(err, books.ErrQueryTooShort) {
			return httperr.Fail(httperr.E{
				Status:  400,
				Message: err.Error(),
			})
		}
		logger.L().Error("book search failed", "handler", "Search", "q", q, "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	return c.JSON(SearchResponse{Items: items})
}

// Get handles single book lookup
// @Summary Get a book by ID
// @Tags books
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} books.Book
// @Failure 404 {object} httperr.E
// @Router /books/{id} [get]
func (h *Handlers) Get(c *fiber.Ctx) error {
	bookID, err := handlerutil.ExtractID(c, "id", "Get", books.ErrBookNotFound)
	if err != nil {
		return err
	}

	book, err := h.service.Get(c.Context(), bookID)
	if err != nil {
		if errors.Is(err, books.ErrBookNotFound) {
			return handlerutil.NotFoundError(err)
		}
		logger.L().Error("book lookup failed", "handler", "Get", "bookID", bookID.Hex(), "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	return c.JSON(book)
}

// Create handles book creation with de-duplication. An existing match (by
// ISBN, then by title and author) comes back with 200 instead of 201.
// @Summary Create a book, or return the existing match
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body books.NewBookInput true "New book"
// @Success 200 {object} books.Book "Existing book matched"
// @Success 201 {object} books.Book "Book created"
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Router /books [post]
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req books.NewBookInput
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Create"); err != nil {
		return err
	}

	book, created, err := h.service.Resolve(c.Context(), req)
	if err != nil {
		logger.L().Error("book create failed", "handler", "Create", "title", req.Title, "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(book)
}
