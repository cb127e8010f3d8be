package users

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"bookburst/internal/config"
	"bookburst/internal/utils/crypto"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service handles user registration, login, and profile business logic
type Service struct {
	repo   Repository
	config config.Config
	log    *slog.Logger
}

// NewService creates a new users service
func NewService(repo Repository, cfg config.Config, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		config: cfg,
		log:    log,
	}
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30" example:"bookworm42"`
	Email    string `json:"email" validate:"required,email" example:"test@example.com"`
	Password string `json:"password" validate:"required,min=6" example:"Password123"`
}

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"test@example.com"`
	Password string `json:"password" validate:"required" example:"Password123"`
}

// AuthResponse represents the response for successful authentication
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.abc.def"`
}

// Register creates a new user account and returns it with a signed token
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)

	if existing, err := s.repo.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}
	if existing, err := s.repo.FindByUsername(ctx, username); err == nil && existing != nil {
		return nil, ErrUsernameTaken
	}

	hashedPassword, err := crypto.HashPassword(req.Password, s.config.BcryptCost)
	if err != nil {
		s.log.Error("failed to hash password", "error", err)
		return nil, errors.New("failed to process password")
	}

	now := time.Now()
	user := &User{
		ID:           bson.NewObjectID(),
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			// Unique index fired between the pre-check and the insert.
			return nil, ErrEmailTaken
		}
		s.log.Error("failed to create user", "error", err)
		return nil, errors.New("failed to create user")
	}

	token, err := s.generateJWT(user)
	if err != nil {
		s.log.Error("failed to generate token", "error", err)
		return nil, ErrGenToken
	}

	return &AuthResponse{User: user, Token: token}, nil
}

// Login authenticates a user by email and password
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil || user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := crypto.CheckPassword(req.Password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateJWT(user)
	if err != nil {
		s.log.Error("failed to generate token", "error", err, "user_id", user.ID.Hex())
		return nil, ErrGenToken
	}

	return &AuthResponse{User: user, Token: token}, nil
}

// Get returns a user by ID
func (s *Service) Get(ctx context.Context, id bson.ObjectID) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.log.Error("failed to look up user", "error", err, "user_id", id.Hex())
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Update applies a partial profile update for the given user
func (s *Service) Update(ctx context.Context, userID bson.ObjectID, patch UpdateProfile) (*User, error) {
	if patch.Username != nil {
		username := strings.TrimSpace(*patch.Username)
		patch.Username = &username

		taken, err := s.repo.UsernameInUse(ctx, username, userID)
		if err != nil {
			s.log.Error("failed to check username", "error", err, "user_id", userID.Hex())
			return nil, errors.New("failed to update profile")
		}
		if taken {
			return nil, ErrUsernameTaken
		}
	}

	user, err := s.repo.UpdateProfile(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		// The unique index can still reject the username when two updates race
		// past the pre-check.
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		s.log.Error("failed to update profile", "error", err, "user_id", userID.Hex())
		return nil, errors.New("failed to update profile")
	}

	return user, nil
}

func (s *Service) generateJWT(user *User) (string, error) {
	ttl := time.Duration(s.config.TokenTTLDays) * 24 * time.Hour
	claims := jwt.MapClaims{
		"user_id": user.ID.Hex(),
		"exp":     time.Now().Add(ttl).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
