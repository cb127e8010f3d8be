package bookshelf

import (
	"context"
	"errors"

	"bookburst/cmd/server/handlers/handlerutil"
	"bookburst/cmd/server/handlers/httperr"
	"bookburst/internal/logger"
	"bookburst/internal/services/books"
	"bookburst/internal/services/bookshelf"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service defines the interface for shelf operations
type Service interface {
	List(ctx context.Context, userID bson.ObjectID, req bookshelf.ListRequest) (*bookshelf.ListResponse, error)
	Add(ctx context.Context, userID bson.ObjectID, req bookshelf.AddItemRequest) (*bookshelf.ItemWithBook, error)
	UpdateStatus(ctx context.Context, userID, itemID bson.ObjectID, status bookshelf.Status) (*bookshelf.ItemWithBook, error)
	UpdateRating(ctx context.Context, userID, itemID bson.ObjectID, rating float64) (*bookshelf.ItemWithBook, error)
	UpdateNotes(ctx context.Context, userID, itemID bson.ObjectID, notes string) (*bookshelf.ItemWithBook, error)
	Remove(ctx context.Context, userID, itemID bson.ObjectID) error
}

// Handlers contains the bookshelf HTTP handlers
type Handlers struct {
	service   Service
	validator *validator.Validate
}

// NewHandlers creates new bookshelf handlers
func NewHandlers(service Service, validator *validator.Validate) *Handlers {
	return &Handlers{
		service:   service,
		validator: validator,
	}
}

// List handles shelf listing with pagination and status filter
// @Summary List the current user's bookshelf
// @Tags bookshelf
// @Produce json
// @Security Bearer
// @Param page query int false "Page (default 1)" minimum(1)
// @Param limit query int false "Page size (default 50, max 100)" minimum(1) maximum(100)
// @Param status query string false "Filter by status: reading|finished|want-to-read"
// @Success 200 {object} bookshelf.ListResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Router /bookshelf [get]
func (h *Handlers) List(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req bookshelf.ListRequest
	if err := handlerutil.ParseAndValidateQuery(c, &req, h.validator, "List"); err != nil {
		return err
	}

	resp, err := h.service.List(c.Context(), userID, req)
	if err != nil {
		logger.L().Error("shelf list failed", "handler", "List", "userID", userID.Hex(), "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	return c.JSON(resp)
}

// Add handles adding a book to the shelf, referencing an existing book or
// creating one inline
// @Summary Add a book to the current user's bookshelf
// @Tags bookshelf
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body bookshelf.AddItemRequest true "Add request: status plus bookId or inline book"
// @Success 201 {object} bookshelf.ItemResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /bookshelf [post]
func (h *Handlers) Add(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req bookshelf.AddItemRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Add"); err != nil {
		return err
	}

	item, err := h.service.Add(c.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, bookshelf.ErrAlreadyInShelf), errors.Is(err, bookshelf.ErrBookRequired):
			return httperr.Fail(httperr.Conflict(err.Error()))
		case errors.Is(err, books.ErrBookNotFound):
			return handlerutil.NotFoundError(err)
		}
		logger.L().Error("shelf add failed", "handler", "Add", "userID", userID.Hex(), "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	return c.Status(201).JSON(bookshelf.ItemResponse{Item: item})
}

// UpdateStatus handles a reading status change
// @Summary Update a shelf item's reading status
// @Tags bookshelf
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Shelf item ID"
// @Param request body bookshelf.UpdateStatusRequest true "New status"
// @Success 200 {object} bookshelf.ItemResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 403 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /bookshelf/{id} [put]
func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	userID, itemID, err := h.requestIDs(c, "UpdateStatus")
	if err != nil {
		return err
	}

	var req bookshelf.UpdateStatusRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "UpdateStatus"); err != nil {
		return err
	}

	item, err := h.service.UpdateStatus(c.Context(), userID, itemID, req.Status)
	if err != nil {
		return h.mapItemError(err, "UpdateStatus", userID, itemID)
	}

	return c.JSON(bookshelf.ItemResponse{Item: item})
}

// UpdateRating handles a rating change
// @Summary Rate a shelf item
// @Tags bookshelf
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Shelf item ID"
// @Param request body bookshelf.UpdateRatingRequest true "New rating (0-5)"
// @Success 200 {object} bookshelf.ItemResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 403 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /bookshelf/{id}/rating [put]
func (h *Handlers) UpdateRating(c *fiber.Ctx) error {
	userID, itemID, err := h.requestIDs(c, "UpdateRating")
	if err != nil {
		return err
	}

	var req bookshelf.UpdateRatingRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "UpdateRating"); err != nil {
		return err
	}

	item, err := h.service.UpdateRating(c.Context(), userID, itemID, *req.Rating)
	if err != nil {
		return h.mapItemError(err, "UpdateRating", userID, itemID)
	}

	return c.JSON(bookshelf.ItemResponse{Item: item})
}

// UpdateNotes handles a notes change
// @Summary Update a shelf item's notes
// @Tags bookshelf
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Shelf item ID"
// @Param request body bookshelf.UpdateNotesRequest true "New notes"
// @Success 200 {object} bookshelf.ItemResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 403 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /bookshelf/{id}/notes [put]
func (h *Handlers) UpdateNotes(c *fiber.Ctx) error {
	userID, itemID, err := h.requestIDs(c, "UpdateNotes")
	if err != nil {
		return err
	}

	var req bookshelf.UpdateNotesRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "UpdateNotes"); err != nil {
		return err
	}

	item, err := h.service.UpdateNotes(c.Context(), userID, itemID, *req.Notes)
	if err != nil {
		return h.mapItemError(err, "UpdateNotes", userID, itemID)
	}

	return c.JSON(bookshelf.ItemResponse{Item: item})
}

// Remove handles shelf item deletion
// @Summary Remove a book from the current user's bookshelf
// @Tags bookshelf
// @Produce json
// @Security Bearer
// @Param id path string true "Shelf item ID"
// @Success 204
// @Failure 401 {object} httperr.E
// @Failure 403 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /bookshelf/{id} [delete]
func (h *Handlers) Remove(c *fiber.Ctx) error {
	userID, itemID, err := h.requestIDs(c, "Remove")
	if err != nil {
		return err
	}

	if err := h.service.Remove(c.Context(), userID, itemID); err != nil {
		return h.mapItemError(err, "Remove", userID, itemID)
	}

	return c.SendStatus(204)
}

func (h *Handlers) requestIDs(c *fiber.Ctx, handlerName string) (bson.ObjectID, bson.ObjectID, error) {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return bson.ObjectID{}, bson.ObjectID{}, err
	}

	itemID, err := handlerutil.ExtractID(c, "id", handlerName, bookshelf.ErrItemNotFound)
	if err != nil {
		return bson.ObjectID{}, bson.ObjectID{}, err
	}

	return userID, itemID, nil
}

func (h *Handlers) mapItemError(err error, handlerName string, userID, itemID bson.ObjectID) error {
	switch {
	case errors.Is(err, bookshelf.ErrItemNotFound):
		return handlerutil.NotFoundError(err)
	case errors.Is(err, bookshelf.ErrNotOwner):
		return httperr.Fail(httperr.E{
			Status:  403,
			Message: err.Error(),
		})
	}
	logger.L().Error("shelf operation failed", "handler", handlerName, "userID", userID.Hex(), "itemID", itemID.Hex(), "error", err)
	return httperr.Fail(httperr.ErrInternal)
}
