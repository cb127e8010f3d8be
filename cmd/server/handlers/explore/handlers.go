package explore

import (
	"context"

	"bookburst/cmd/server/handlers/handlerutil"
	"bookburst/cmd/server/handlers/httperr"
	"bookburst/internal/logger"
	"bookburst/internal/services/explore"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Service defines the interface for the explore rankings
type Service interface {
	Trending(ctx context.Context, req explore.PageRequest) (*explore.BookListResponse, error)
	TopRated(ctx context.Context, req explore.PageRequest) (*explore.BookListResponse, error)
	MostWishlisted(ctx context.Context, req explore.PageRequest) (*explore.BookListResponse, error)
	Genres(ctx context.Context) ([]string, error)
}

// GenresResponse wraps the genre catalog
type GenresResponse struct {
	Genres []string `json:"genres"`
}

// Handlers contains the explore HTTP handlers
type Handlers struct {
	service   Service
	validator *validator.Validate
}

// NewHandlers creates new explore handlers
func NewHandlers(service Service, validator *validator.Validate) *Handlers {
	return &Handlers{
		service:   service,
		validator: validator,
	}
}

// Trending lists the most-shelved books
// @Summary List trending books
// @Tags explore
// @Produce json
// @Param page query int false "Page (default 1)" minimum(1)
// @Param limit query int false "Page size (default 10, max 100)" minimum(1) maximum(100)
// @Param genre query string false "Restrict to books tagged with this genre"
// @Success 200 {object} explore.BookListResponse
// @Failure 400 {object} httperr.E
// @Router /explore/trending [get]
func (h *Handlers) Trending(c *fiber.Ctx) error {
	return h.ranked(c, "Trending", h.service.Trending)
}

// TopRated lists the best-reviewed books
// @Summary List top-rated books
// @Tags explore
// @Produce json
// @Param page query int false "Page (default 1)" minimum(1)
// @Param limit query int false "Page size (default 10, max 100)" minimum(1) maximum(100)
// @Param genre query string false "Restrict to books tagged with this genre"
// @Success 200 {object} explore.BookListResponse
// @Failure 400 {object} httperr.E
// @Router /explore/top-rated [get]
func (h *Handlers) TopRated(c *fiber.Ctx) error {
	return h.ranked(c, "TopRated", h.service.TopRated)
}

// MostWishlisted lists the most want-to-read books
// @Summary List most-wishlisted books
// @Tags explore
// @Produce json
// @Param page query int false "Page (default 1)" minimum(1)
// @Param limit query int false "Page size (default 10, max 100)" minimum(1) maximum(100)
// @Param genre query string false "Restrict to books tagged with this genre"
// @Success 200 {object} explore.BookListResponse
// @Failure 400 {object} httperr.E
// @Router /explore/most-wishlisted [get]
func (h *Handlers) MostWishlisted(c *fiber.Ctx) error {
	return h.ranked(c, "MostWishlisted", h.service.MostWishlisted)
}

// Genres lists every genre in the catalog
// @Summary List all genres
// @Tags explore
// @Produce json
// @Success 200 {object} GenresResponse
// @Router /explore/genres [get]
func (h *Handlers) Genres(c *fiber.Ctx) error {
	genres, err := h.service.Genres(c.Context())
	if err != nil {
		logger.L().Error("genre listing failed", "handler", "Genres", "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}
	return c.JSON(GenresResponse{Genres: genres})
}

func (h *Handlers) ranked(c *fiber.Ctx, handlerName string, list func(context.Context, explore.PageRequest) (*explore.BookListResponse, error)) error {
	var req explore.PageRequest
	if err := handlerutil.ParseAndValidateQuery(c, &req, h.validator, handlerName); err != nil {
		return err
	}

	resp, err := list(c.Context(), req)
	if err != nil {
		logger.L().Error("ranked listing failed", "handler", handlerName, "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	return c.JSON(resp)
}
