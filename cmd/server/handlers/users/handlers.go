package users

import (
	"context"
	"errors"

	"bookburst/cmd/server/handlers/handlerutil"
	"bookburst/cmd/server/handlers/httperr"
	"bookburst/internal/logger"
	"bookburst/internal/services/bookshelf"
	"bookburst/internal/services/reviews"
	"bookburst/internal/services/users"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// ProfileService defines the interface for user profile operations
type ProfileService interface {
	Get(ctx context.Context, id bson.ObjectID) (*users.User, error)
	Update(ctx context.Context, userID bson.ObjectID, patch users.UpdateProfile) (*users.User, error)
}

// ShelfReader exposes the shelf views a public profile embeds
type ShelfReader interface {
	ProfileItems(ctx context.Context, userID bson.ObjectID) ([]*bookshelf.ItemWithBook, error)
	ReadingHistory(ctx context.Context, userID bson.ObjectID) ([]*bookshelf.HistoryGroup, error)
}

// ReviewReader exposes the review views a public profile embeds
type ReviewReader interface {
	ForProfile(ctx context.Context, userID bson.ObjectID) ([]*reviews.ReviewWithRefs, error)
}

// PublicProfileResponse bundles everything a profile page shows in one call
type PublicProfileResponse struct {
	User    *users.User               `json:"user"`
	Books   []*bookshelf.ItemWithBook `json:"books"`
	Reviews []*reviews.ReviewWithRefs `json:"reviews"`
}

// HistoryResponse wraps a reading history
type HistoryResponse struct {
	History []*bookshelf.HistoryGroup `json:"history"`
}

// Handlers contains the user profile HTTP handlers
type Handlers struct {
	profiles  ProfileService
	shelves   ShelfReader
	reviews   ReviewReader
	validator *validator.Validate
}

// NewHandlers creates new user profile handlers
func NewHandlers(profiles ProfileService, shelves ShelfReader, reviews ReviewReader, validator *validator.Validate) *Handlers {
	return &Handlers{
		profiles:  profiles,
		shelves:   shelves,
		reviews:   reviews,
		validator: validator,
	}
}

// Me returns the authenticated user's profile
// @Summary Get the current user
// @Tags users
// @Produce json
// @Security Bearer
// @Success 200 {object} users.User
// @Failure 401 {object} httperr.E
// @Router /users/profile [get]
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, err := handlerutil.GetUser(c)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// UpdateMe updates the authenticated user's profile
// @Summary Update the current user's profile
// @Tags users
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body users.UpdateProfile true "Profile update"
// @Success 200 {object} users.User
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Router /users/profile [put]
func (h *Handlers) UpdateMe(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req users.UpdateProfile
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "UpdateMe"); err != nil {
		return err
	}

	user, err := h.profiles.Update(c.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrUsernameTaken):
			return httperr.Fail(httperr.Conflict(err.Error()))
		case errors.Is(err, users.ErrUserNotFound):
			return handlerutil.NotFoundError(err)
		}
		logger.L().Error("profile update failed", "handler", "UpdateMe", "userID", userID.Hex(), "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	return c.JSON(user)
}

// PublicProfile returns a user's public profile with shelf and reviews
// @Summary Get a user's public profile
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} PublicProfileResponse
// @Failure 404 {object} httperr.E
// @Router /users/{id}/profile [get]
func (h *Handlers) PublicProfile(c *fiber.Ctx) error {
	userID, err := handlerutil.ExtractID(c, "id", "PublicProfile", users.ErrUserNotFound)
	if err != nil {
		return err
	}

	user, err := h.profiles.Get(c.Context(), userID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return handlerutil.NotFoundError(err)
		}
		logger.L().Error("profile lookup failed", "handler", "PublicProfile", "userID", userID.Hex(), "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	items, err := h.shelves.ProfileItems(c.Context(), userID)
	if err != nil {
		logger.L().Error("profile shelf lookup failed", "handler", "PublicProfile", "userID", userID.Hex(), "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	revs, err := h.reviews.ForProfile(c.Context(), userID)
	if err != nil {
		logger.L().Error("profile reviews lookup failed", "handler", "PublicProfile", "userID", userID.Hex(), "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	return c.JSON(PublicProfileResponse{
		User:    user,
		Books:   items,
		Reviews: revs,
	})
}

// ReadingHistory returns a user's finished books grouped by month
// @Summary Get a user's reading history
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} HistoryResponse
// @Failure 404 {object} httperr.E
// @Router /users/{id}/reading-history [get]
func (h *Handlers) ReadingHistory(c *fiber.Ctx) error {
	userID, err := handlerutil.ExtractID(c, "id", "ReadingHistory", users.ErrUserNotFound)
	if err != nil {
		return err
	}

	if _, err := h.profiles.Get(c.Context(), userID); err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return handlerutil.NotFoundError(err)
		}
		logger.L().Error("history user lookup failed", "handler", "ReadingHistory", "userID", userID.Hex(), "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	history, err := h.shelves.ReadingHistory(c.Context(), userID)
	if err != nil {
		logger.L().Error("reading history failed", "handler", "ReadingHistory", "userID", userID.Hex(), "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	return c.JSON(HistoryResponse{History: history})
}
