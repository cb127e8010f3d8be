package users

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"bookburst/internal/config"
	"bookburst/internal/utils/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var silentLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// MockRepo is a mock implementation of Repository
type MockRepo struct {
	mock.Mock
}

func (m *MockRepo) Create(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepo) FindByID(ctx context.Context, id bson.ObjectID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepo) FindByUsername(ctx context.Context, username string) (*User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepo) UsernameInUse(ctx context.Context, username string, excludeID bson.ObjectID) (bool, error) {
	args := m.Called(ctx, username, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepo) UpdateProfile(ctx context.Context, id bson.ObjectID, patch UpdateProfile) (*User, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func testConfig() config.Config {
	return config.Config{
		BcryptCost:   4,
		JWTSecret:    "super-secret-jwt-key-at-least-32-chars",
		JWTAlgorithm: "HS256",
		TokenTTLDays: 7,
	}
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		setup   func(*MockRepo)
		wantErr error
	}{
		{
			name: "successful registration",
			req: RegisterRequest{
				Username: "bookworm42",
				Email:    "test@example.com",
				Password: "Password123",
			},
			setup: func(repo *MockRepo) {
				repo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, nil)
				repo.On("FindByUsername", mock.Anything, "bookworm42").Return(nil, nil)
				repo.On("Create", mock.Anything, mock.AnythingOfType("*users.User")).Return(nil)
			},
		},
		{
			name: "email already registered",
			req: RegisterRequest{
				Username: "bookworm42",
				Email:    "test@example.com",
				Password: "Password123",
			},
			setup: func(repo *MockRepo) {
				existing := &User{ID: bson.NewObjectID(), Email: "test@example.com"}
				repo.On("FindByEmail", mock.Anything, "test@example.com").Return(existing, nil)
			},
			wantErr: ErrEmailTaken,
		},
		{
			name: "username already taken",
			req: RegisterRequest{
				Username: "bookworm42",
				Email:    "other@example.com",
				Password: "Password123",
			},
			setup: func(repo *MockRepo) {
				existing := &User{ID: bson.NewObjectID(), Username: "bookworm42"}
				repo.On("FindByEmail", mock.Anything, "other@example.com").Return(nil, nil)
				repo.On("FindByUsername", mock.Anything, "bookworm42").Return(existing, nil)
			},
			wantErr: ErrUsernameTaken,
		},
		{
			name: "unique index rejects racing duplicate",
			req: RegisterRequest{
				Username: "bookworm42",
				Email:    "test@example.com",
				Password: "Password123",
			},
			setup: func(repo *MockRepo) {
				repo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, nil)
				repo.On("FindByUsername", mock.Anything, "bookworm42").Return(nil, nil)
				repo.On("Create", mock.Anything, mock.AnythingOfType("*users.User")).Return(ErrDuplicate)
			},
			wantErr: ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepo)
			tt.setup(repo)

			service := NewService(repo, testConfig(), silentLogger)
			resp, err := service.Register(context.Background(), tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
			} else {
				require.NoError(t, err)
				require.NotNil(t, resp)
				assert.NotEmpty(t, resp.Token)
				assert.Equal(t, "test@example.com", resp.User.Email)
				assert.NotEmpty(t, resp.User.PasswordHash)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestService_Register_NormalizesEmail(t *testing.T) {
	repo := new(MockRepo)
	repo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, nil)
	repo.On("FindByUsername", mock.Anything, "bookworm42").Return(nil, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*users.User")).Return(nil)

	service := NewService(repo, testConfig(), silentLogger)
	resp, err := service.Register(context.Background(), RegisterRequest{
		Username: "  bookworm42  ",
		Email:    "  Test@Example.COM ",
		Password: "Password123",
	})

	require.NoError(t, err)
	assert.Equal(t, "test@example.com", resp.User.Email)
	assert.Equal(t, "bookworm42", resp.User.Username)
	repo.AssertExpectations(t)
}

func TestService_Login(t *testing.T) {
	hash, err := crypto.HashPassword("Password123", 4)
	require.NoError(t, err)

	user := &User{
		ID:           bson.NewObjectID(),
		Username:     "bookworm42",
		Email:        "test@example.com",
		PasswordHash: hash,
	}

	tests := []struct {
		name    string
		req     LoginRequest
		setup   func(*MockRepo)
		wantErr error
	}{
		{
			name: "successful login",
			req:  LoginRequest{Email: "test@example.com", Password: "Password123"},
			setup: func(repo *MockRepo) {
				repo.On("FindByEmail", mock.Anything, "test@example.com").Return(user, nil)
			},
		},
		{
			name: "unknown email",
			req:  LoginRequest{Email: "nobody@example.com", Password: "Password123"},
			setup: func(repo *MockRepo) {
				repo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, nil)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name: "wrong password",
			req:  LoginRequest{Email: "test@example.com", Password: "WrongPassword"},
			setup: func(repo *MockRepo) {
				repo.On("FindByEmail", mock.Anything, "test@example.com").Return(user, nil)
			},
			wantErr: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepo)
			tt.setup(repo)

			service := NewService(repo, testConfig(), silentLogger)
			resp, err := service.Login(context.Background(), tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, resp.Token)
				assert.Equal(t, user.ID, resp.User.ID)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestService_Get_DistinguishesMissingFromFailure(t *testing.T) {
	userID := bson.NewObjectID()

	t.Run("missing user", func(t *testing.T) {
		repo := new(MockRepo)
		repo.On("FindByID", mock.Anything, userID).Return(nil, nil)

		service := NewService(repo, testConfig(), silentLogger)
		user, err := service.Get(context.Background(), userID)

		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.Nil(t, user)
		repo.AssertExpectations(t)
	})

	t.Run("store failure", func(t *testing.T) {
		storeErr := errors.New("connection reset")
		repo := new(MockRepo)
		repo.On("FindByID", mock.Anything, userID).Return(nil, storeErr)

		service := NewService(repo, testConfig(), silentLogger)
		user, err := service.Get(context.Background(), userID)

		// a lookup failure must not masquerade as a missing user
		assert.ErrorIs(t, err, storeErr)
		assert.NotErrorIs(t, err, ErrUserNotFound)
		assert.Nil(t, user)
		repo.AssertExpectations(t)
	})
}

func TestService_Update_UsernameConflict(t *testing.T) {
	userID := bson.NewObjectID()
	taken := "takenname"

	repo := new(MockRepo)
	repo.On("UsernameInUse", mock.Anything, taken, userID).Return(true, nil)

	service := NewService(repo, testConfig(), silentLogger)
	resp, err := service.Update(context.Background(), userID, UpdateProfile{Username: &taken})

	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.Nil(t, resp)
	repo.AssertExpectations(t)
}

func TestService_Update_TrimsUsername(t *testing.T) {
	userID := bson.NewObjectID()
	padded := "  newname  "
	updated := &User{ID: userID, Username: "newname"}

	repo := new(MockRepo)
	repo.On("UsernameInUse", mock.Anything, "newname", userID).Return(false, nil)
	repo.On("UpdateProfile", mock.Anything, userID, mock.MatchedBy(func(p UpdateProfile) bool {
		return p.Username != nil && *p.Username == "newname"
	})).Return(updated, nil)

	service := NewService(repo, testConfig(), silentLogger)
	resp, err := service.Update(context.Background(), userID, UpdateProfile{Username: &padded})

	require.NoError(t, err)
	assert.Equal(t, "newname", resp.Username)
	repo.AssertExpectations(t)
}
