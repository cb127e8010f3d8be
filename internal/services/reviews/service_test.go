package reviews

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"bookburst/internal/services/books"
	"bookburst/internal/services/users"

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

func (m *MockRepo) Create(ctx context.Context, review *Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockRepo) FindByUserAndBook(ctx context.Context, userID, bookID bson.ObjectID) (*Review, error) {
	args := m.Called(ctx, userID, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Review), args.Error(1)
}

func (m *MockRepo) ListByBook(ctx context.Context, bookID bson.ObjectID, skip, limit int) ([]*Review, int64, error) {
	args := m.Called(ctx, bookID, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepo) ListByUser(ctx context.Context, userID bson.ObjectID, skip, limit int) ([]*Review, int64, error) {
	args := m.Called(ctx, userID, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepo) ListAllByUser(ctx context.Context, userID bson.ObjectID) ([]*Review, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Review), args.Error(1)
}

func (m *MockRepo) ListRecent(ctx context.Context, bookIDs []bson.ObjectID, skip, limit int) ([]*Review, int64, error) {
	args := m.Called(ctx, bookIDs, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*Review), args.Get(1).(int64), args.Error(2)
}

// MockCatalog is a mock implementation of BookCatalog
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Get(ctx context.Context, id bson.ObjectID) (*books.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*books.Book), args.Error(1)
}

func (m *MockCatalog) ByIDs(ctx context.Context, ids []bson.ObjectID) ([]*books.Book, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*books.Book), args.Error(1)
}

func (m *MockCatalog) IDsByGenre(ctx context.Context, genre string) ([]bson.ObjectID, error) {
	args := m.Called(ctx, genre)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]bson.ObjectID), args.Error(1)
}

// MockUserDirectory is a mock implementation of UserDirectory
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]*users.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*users.User), args.Error(1)
}

func TestService_Create(t *testing.T) {
	userID := bson.NewObjectID()
	book := &books.Book{ID: bson.NewObjectID(), Title: "Dune"}
	reviewer := &users.User{ID: userID, Username: "bookworm42"}

	t.Run("successful review with populated refs", func(t *testing.T) {
		repo := new(MockRepo)
		catalog := new(MockCatalog)
		userDir := new(MockUserDirectory)

		catalog.On("Get", mock.Anything, book.ID).Return(book, nil)
		repo.On("FindByUserAndBook", mock.Anything, userID, book.ID).Return(nil, nil)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*reviews.Review")).Return(nil)
		userDir.On("FindByIDs", mock.Anything, []bson.ObjectID{userID}).Return([]*users.User{reviewer}, nil)
		catalog.On("ByIDs", mock.Anything, []bson.ObjectID{book.ID}).Return([]*books.Book{book}, nil)

		service := NewService(repo, catalog, userDir, silentLogger)
		resp, err := service.Create(context.Background(), userID, CreateReviewRequest{
			BookID:  book.ID.Hex(),
			Rating:  4,
			Content: "Couldn't put it down.",
		})

		require.NoError(t, err)
		assert.Equal(t, 4, resp.Rating)
		assert.True(t, resp.Recommend, "recommend defaults to true")
		require.NotNil(t, resp.User)
		assert.Equal(t, "bookworm42", resp.User.Username)
		require.NotNil(t, resp.Book)
		assert.Equal(t, "Dune", resp.Book.Title)
		repo.AssertExpectations(t)
	})

	t.Run("explicit recommend false survives", func(t *testing.T) {
		recommend := false

		repo := new(MockRepo)
		catalog := new(MockCatalog)
		userDir := new(MockUserDirectory)

		catalog.On("Get", mock.Anything, book.ID).Return(book, nil)
		repo.On("FindByUserAndBook", mock.Anything, userID, book.ID).Return(nil, nil)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(r *Review) bool {
			return !r.Recommend
		})).Return(nil)
		userDir.On("FindByIDs", mock.Anything, []bson.ObjectID{userID}).Return([]*users.User{reviewer}, nil)
		catalog.On("ByIDs", mock.Anything, []bson.ObjectID{book.ID}).Return([]*books.Book{book}, nil)

		service := NewService(repo, catalog, userDir, silentLogger)
		resp, err := service.Create(context.Background(), userID, CreateReviewRequest{
			BookID:    book.ID.Hex(),
			Rating:    2,
			Content:   "Not for me.",
			Recommend: &recommend,
		})

		require.NoError(t, err)
		assert.False(t, resp.Recommend)
	})

	t.Run("unknown book", func(t *testing.T) {
		repo := new(MockRepo)
		catalog := new(MockCatalog)
		userDir := new(MockUserDirectory)

		catalog.On("Get", mock.Anything, book.ID).Return(nil, books.ErrBookNotFound)

		service := NewService(repo, catalog, userDir, silentLogger)
		_, err := service.Create(context.Background(), userID, CreateReviewRequest{
			BookID:  book.ID.Hex(),
			Rating:  4,
			Content: "x",
		})

		assert.ErrorIs(t, err, books.ErrBookNotFound)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("second review of the same book is rejected", func(t *testing.T) {
		existing := &Review{ID: bson.NewObjectID(), UserID: userID, BookID: book.ID}

		repo := new(MockRepo)
		catalog := new(MockCatalog)
		userDir := new(MockUserDirectory)

		catalog.On("Get", mock.Anything, book.ID).Return(book, nil)
		repo.On("FindByUserAndBook", mock.Anything, userID, book.ID).Return(existing, nil)

		service := NewService(repo, catalog, userDir, silentLogger)
		_, err := service.Create(context.Background(), userID, CreateReviewRequest{
			BookID:  book.ID.Hex(),
			Rating:  5,
			Content: "again",
		})

		assert.ErrorIs(t, err, ErrAlreadyReviewed)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("content is sanitized", func(t *testing.T) {
		repo := new(MockRepo)
		catalog := new(MockCatalog)
		userDir := new(MockUserDirectory)

		catalog.On("Get", mock.Anything, book.ID).Return(book, nil)
		repo.On("FindByUserAndBook", mock.Anything, userID, book.ID).Return(nil, nil)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(r *Review) bool {
			return r.Content == "Loved it."
		})).Return(nil)
		userDir.On("FindByIDs", mock.Anything, []bson.ObjectID{userID}).Return([]*users.User{reviewer}, nil)
		catalog.On("ByIDs", mock.Anything, []bson.ObjectID{book.ID}).Return([]*books.Book{book}, nil)

		service := NewService(repo, catalog, userDir, silentLogger)
		_, err := service.Create(context.Background(), userID, CreateReviewRequest{
			BookID:  book.ID.Hex(),
			Rating:  5,
			Content: `<img src=x onerror=alert(1)>Loved it.`,
		})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestService_Recent_GenreFilter(t *testing.T) {
	genreBookID := bson.NewObjectID()

	t.Run("genre restricts the feed", func(t *testing.T) {
		repo := new(MockRepo)
		catalog := new(MockCatalog)
		userDir := new(MockUserDirectory)

		catalog.On("IDsByGenre", mock.Anything, "Fantasy").Return([]bson.ObjectID{genreBookID}, nil)
		repo.On("ListRecent", mock.Anything, []bson.ObjectID{genreBookID}, 0, DefaultLimit).
			Return([]*Review{}, int64(0), nil)

		service := NewService(repo, catalog, userDir, silentLogger)
		resp, err := service.Recent(context.Background(), RecentRequest{Genre: "Fantasy"})

		require.NoError(t, err)
		assert.Empty(t, resp.Items)
		repo.AssertExpectations(t)
	})

	t.Run("unknown genre matches nothing, not everything", func(t *testing.T) {
		repo := new(MockRepo)
		catalog := new(MockCatalog)
		userDir := new(MockUserDirectory)

		catalog.On("IDsByGenre", mock.Anything, "Nope").Return([]bson.ObjectID{}, nil)
		repo.On("ListRecent", mock.Anything, mock.MatchedBy(func(ids []bson.ObjectID) bool {
			return ids != nil && len(ids) == 0
		}), 0, DefaultLimit).Return([]*Review{}, int64(0), nil)

		service := NewService(repo, catalog, userDir, silentLogger)
		_, err := service.Recent(context.Background(), RecentRequest{Genre: "Nope"})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("no genre means no filter", func(t *testing.T) {
		repo := new(MockRepo)
		catalog := new(MockCatalog)
		userDir := new(MockUserDirectory)

		repo.On("ListRecent", mock.Anything, mock.MatchedBy(func(ids []bson.ObjectID) bool {
			return ids == nil
		}), 0, DefaultLimit).Return([]*Review{}, int64(0), nil)

		service := NewService(repo, catalog, userDir, silentLogger)
		_, err := service.Recent(context.Background(), RecentRequest{})

		require.NoError(t, err)
		catalog.AssertNotCalled(t, "IDsByGenre", mock.Anything, mock.Anything)
	})
}

func TestService_ByBook_Pagination(t *testing.T) {
	bookID := bson.NewObjectID()

	repo := new(MockRepo)
	catalog := new(MockCatalog)
	userDir := new(MockUserDirectory)

	repo.On("ListByBook", mock.Anything, bookID, 20, 10).Return([]*Review{}, int64(27), nil)

	service := NewService(repo, catalog, userDir, silentLogger)
	resp, err := service.ByBook(context.Background(), bookID, ListRequest{Page: 3, Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, 3, resp.Page)
	assert.Equal(t, 3, resp.Pages)
	assert.Equal(t, int64(27), resp.Total)
	repo.AssertExpectations(t)
}
