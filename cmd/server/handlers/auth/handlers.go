package auth

import (
	"context"
	"errors"

	"bookburst/cmd/server/handlers/httperr"
	"bookburst/internal/logger"
	"bookburst/internal/services/users"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UsersService defines the interface for the account operations
type UsersService interface {
	Register(ctx context.Context, req users.RegisterRequest) (*users.AuthResponse, error)
	Login(ctx context.Context, req users.LoginRequest) (*users.AuthResponse, error)
}

// Handlers contains the auth HTTP handlers
type Handlers struct {
	usersService UsersService
	validator    *validator.Validate
}

// NewHandlers creates new auth handlers
func NewHandlers(usersService UsersService, validator *validator.Validate) *Handlers {
	return &Handlers{
		usersService: usersService,
		validator:    validator,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body users.RegisterRequest true "Register request"
// @Success 201 {object} users.AuthResponse
// @Failure 400 {object} httperr.E
// @Failure 429 {object} httperr.E
// @Router /users/register [post]
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req users.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		logger.L().Warn("failed to parse register request body", "handler", "Register", "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := h.validator.Struct(req); err != nil {
		logger.L().Warn("register request validation failed", "handler", "Register", "error", err)
		return httperr.InvalidInput(err)
	}

	resp, err := h.usersService.Register(c.Context(), req)
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) || errors.Is(err, users.ErrUsernameTaken) {
			return httperr.Fail(httperr.Conflict(err.Error()))
		}
		logger.L().Error("register service failed", "handler", "Register", "email", req.Email, "error", err)
		return httperr.Fail(httperr.E{
			Status:  400,
			Message: err.Error(),
		})
	}

	return c.Status(201).JSON(resp)
}

// Login handles user authentication
// @Summary Authenticate a user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body users.LoginRequest true "Login request"
// @Success 200 {object} users.AuthResponse
// @Failure 400 {object} httperr.E
// @Failure 429 {object} httperr.E
// @Router /users/login [post]
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req users.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.L().Warn("failed to parse login request body", "handler", "Login", "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := h.validator.Struct(req); err != nil {
		logger.L().Warn("login request validation failed", "handler", "Login", "error", err)
		return httperr.InvalidInput(err)
	}

	resp, err := h.usersService.Login(c.Context(), req)
	if err != nil {
		// Unknown emails and wrong passwords get the same response so the
		// endpoint cannot be used to probe for accounts.
		logger.L().Info("login rejected", "handler", "Login", "email", req.Email)
		return httperr.Fail(httperr.E{
			Status:  400,
			Message: users.ErrInvalidCredentials.Error(),
		})
	}

	return c.JSON(resp)
}
