package books

import (
	"context"
	"io"
	"log/slog"
	"testing"

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

func (m *MockRepo) Create(ctx context.Context, book *Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *MockRepo) FindByID(ctx context.Context, id bson.ObjectID) (*Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Book), args.Error(1)
}

func (m *MockRepo) FindByISBN(ctx context.Context, isbn string) (*Book, error) {
	args := m.Called(ctx, isbn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Book), args.Error(1)
}

func (m *MockRepo) FindByTitleAuthor(ctx context.Context, title, author string) (*Book, error) {
	args := m.Called(ctx, title, author)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Book), args.Error(1)
}

func (m *MockRepo) TextSearch(ctx context.Context, q string, limit int) ([]*Book, error) {
	args := m.Called(ctx, q, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Book), args.Error(1)
}

func (m *MockRepo) SubstringSearch(ctx context.Context, q string, limit int) ([]*Book, error) {
	args := m.Called(ctx, q, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Book), args.Error(1)
}

func (m *MockRepo) FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]*Book, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Book), args.Error(1)
}

func (m *MockRepo) FindIDsByGenre(ctx context.Context, genre string) ([]bson.ObjectID, error) {
	args := m.Called(ctx, genre)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]bson.ObjectID), args.Error(1)
}

func (m *MockRepo) FindWithGenres(ctx context.Context) ([]*Book, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Book), args.Error(1)
}

func TestService_Search_QueryTooShort(t *testing.T) {
	repo := new(MockRepo)
	service := NewService(repo, silentLogger)

	for _, q := range []string{"", "a", "  a  ", "   "} {
		_, err := service.Search(context.Background(), q)
		assert.ErrorIs(t, err, ErrQueryTooShort, "q=%q", q)
	}

	repo.AssertExpectations(t)
}

func TestService_Search_FallsBackToSubstring(t *testing.T) {
	match := &Book{ID: bson.NewObjectID(), Title: "Dune"}

	repo := new(MockRepo)
	repo.On("TextSearch", mock.Anything, "dun", SearchLimit).Return([]*Book{}, nil)
	repo.On("SubstringSearch", mock.Anything, "dun", SearchLimit).Return([]*Book{match}, nil)

	service := NewService(repo, silentLogger)
	results, err := service.Search(context.Background(), "  dun  ")

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, match.ID, results[0].ID)
	repo.AssertExpectations(t)
}

func TestService_Search_TextHitSkipsFallback(t *testing.T) {
	match := &Book{ID: bson.NewObjectID(), Title: "Dune"}

	repo := new(MockRepo)
	repo.On("TextSearch", mock.Anything, "dune", SearchLimit).Return([]*Book{match}, nil)

	service := NewService(repo, silentLogger)
	results, err := service.Search(context.Background(), "dune")

	require.NoError(t, err)
	require.Len(t, results, 1)
	repo.AssertNotCalled(t, "SubstringSearch", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Resolve(t *testing.T) {
	existing := &Book{
		ID:     bson.NewObjectID(),
		Title:  "Dune",
		Author: "Frank Herbert",
		ISBN:   "9780441013593",
	}

	tests := []struct {
		name        string
		input       NewBookInput
		setup       func(*MockRepo)
		wantCreated bool
		wantID      bson.ObjectID
	}{
		{
			name:  "isbn match returns existing",
			input: NewBookInput{Title: "dune", Author: "frank herbert", ISBN: "9780441013593"},
			setup: func(repo *MockRepo) {
				repo.On("FindByISBN", mock.Anything, "9780441013593").Return(existing, nil)
			},
			wantCreated: false,
			wantID:      existing.ID,
		},
		{
			name:  "title and author match returns existing",
			input: NewBookInput{Title: "Dune", Author: "Frank Herbert"},
			setup: func(repo *MockRepo) {
				repo.On("FindByTitleAuthor", mock.Anything, "Dune", "Frank Herbert").Return(existing, nil)
			},
			wantCreated: false,
			wantID:      existing.ID,
		},
		{
			name:  "no match creates",
			input: NewBookInput{Title: "Dune Messiah", Author: "Frank Herbert"},
			setup: func(repo *MockRepo) {
				repo.On("FindByTitleAuthor", mock.Anything, "Dune Messiah", "Frank Herbert").Return(nil, nil)
				repo.On("Create", mock.Anything, mock.AnythingOfType("*books.Book")).Return(nil)
			},
			wantCreated: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepo)
			tt.setup(repo)

			service := NewService(repo, silentLogger)
			book, created, err := service.Resolve(context.Background(), tt.input)

			require.NoError(t, err)
			require.NotNil(t, book)
			assert.Equal(t, tt.wantCreated, created)
			if !tt.wantCreated {
				assert.Equal(t, tt.wantID, book.ID)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestService_Resolve_DefaultsGenreAndSanitizes(t *testing.T) {
	repo := new(MockRepo)
	repo.On("FindByTitleAuthor", mock.Anything, "Dune", "Frank Herbert").Return(nil, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*books.Book")).Return(nil)

	service := NewService(repo, silentLogger)
	book, created, err := service.Resolve(context.Background(), NewBookInput{
		Title:       "  Dune  ",
		Author:      "Frank Herbert",
		Description: `<script>alert("x")</script>A classic.`,
	})

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Dune", book.Title)
	assert.NotNil(t, book.Genre)
	assert.Empty(t, book.Genre)
	assert.NotContains(t, book.Description, "<script>")
	repo.AssertExpectations(t)
}

func TestService_Genres_UnionSortedDeduped(t *testing.T) {
	docs := []*Book{
		{Genre: []string{"Fantasy", "Classics"}},
		{Genre: []string{"Science Fiction", "Classics"}},
		{Genre: []string{"Fantasy"}},
	}

	repo := new(MockRepo)
	repo.On("FindWithGenres", mock.Anything).Return(docs, nil)

	service := NewService(repo, silentLogger)
	genres, err := service.Genres(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"Classics", "Fantasy", "Science Fiction"}, genres)
	repo.AssertExpectations(t)
}

func TestService_IDsByGenre_NeverNil(t *testing.T) {
	repo := new(MockRepo)
	repo.On("FindIDsByGenre", mock.Anything, "Unknown").Return(nil, nil)

	service := NewService(repo, silentLogger)
	ids, err := service.IDsByGenre(context.Background(), "Unknown")

	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
	repo.AssertExpectations(t)
}

func TestService_Get_NotFound(t *testing.T) {
	id := bson.NewObjectID()

	repo := new(MockRepo)
	repo.On("FindByID", mock.Anything, id).Return(nil, nil)

	service := NewService(repo, silentLogger)
	_, err := service.Get(context.Background(), id)

	assert.ErrorIs(t, err, ErrBookNotFound)
	repo.AssertExpectations(t)
}
