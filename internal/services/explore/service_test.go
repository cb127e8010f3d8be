package explore

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"bookburst/internal/services/books"
	"bookburst/internal/services/bookshelf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var silentLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// MockShelfStats is a mock implementation of ShelfStats
type MockShelfStats struct {
	mock.Mock
}

func (m *MockShelfStats) CountByBook(ctx context.Context, bookIDs []bson.ObjectID, status bookshelf.Status, skip, limit int64) ([]BookCount, int64, error) {
	args := m.Called(ctx, bookIDs, status, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]BookCount), args.Get(1).(int64), args.Error(2)
}

// MockReviewStats is a mock implementation of ReviewStats
type MockReviewStats struct {
	mock.Mock
}

func (m *MockReviewStats) TopRatedBooks(ctx context.Context, bookIDs []bson.ObjectID, minCount, skip, limit int64) ([]BookRating, int64, error) {
	args := m.Called(ctx, bookIDs, minCount, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]BookRating), args.Get(1).(int64), args.Error(2)
}

// MockCatalog is a mock implementation of Catalog
type MockCatalog struct {
	mock.Mock
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

func (m *MockCatalog) Genres(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func TestOrderByIDs(t *testing.T) {
	a := &books.Book{ID: bson.NewObjectID(), Title: "A"}
	b := &books.Book{ID: bson.NewObjectID(), Title: "B"}
	c := &books.Book{ID: bson.NewObjectID(), Title: "C"}

	t.Run("restores ranking order after unordered fetch", func(t *testing.T) {
		ordered := orderByIDs([]*books.Book{c, a, b}, []bson.ObjectID{a.ID, b.ID, c.ID})

		require.Len(t, ordered, 3)
		assert.Equal(t, "A", ordered[0].Title)
		assert.Equal(t, "B", ordered[1].Title)
		assert.Equal(t, "C", ordered[2].Title)
	})

	t.Run("drops ids that resolved to nothing", func(t *testing.T) {
		missing := bson.NewObjectID()
		ordered := orderByIDs([]*books.Book{b}, []bson.ObjectID{a.ID, missing, b.ID})

		require.Len(t, ordered, 1)
		assert.Equal(t, "B", ordered[0].Title)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, orderByIDs(nil, nil))
	})
}

func TestService_Trending(t *testing.T) {
	first := &books.Book{ID: bson.NewObjectID(), Title: "Most shelved"}
	second := &books.Book{ID: bson.NewObjectID(), Title: "Runner up"}

	shelves := new(MockShelfStats)
	reviews := new(MockReviewStats)
	catalog := new(MockCatalog)

	shelves.On("CountByBook", mock.Anything, []bson.ObjectID(nil), bookshelf.Status(""), int64(0), int64(10)).
		Return([]BookCount{
			{BookID: first.ID, Count: 9},
			{BookID: second.ID, Count: 4},
		}, int64(12), nil)
	// Fetch comes back in a different order than the ranking.
	catalog.On("ByIDs", mock.Anything, []bson.ObjectID{first.ID, second.ID}).
		Return([]*books.Book{second, first}, nil)

	service := NewService(shelves, reviews, catalog, silentLogger)
	resp, err := service.Trending(context.Background(), PageRequest{})

	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "Most shelved", resp.Items[0].Title)
	assert.Equal(t, "Runner up", resp.Items[1].Title)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 2, resp.Pages)
	assert.Equal(t, int64(12), resp.Total)
	shelves.AssertExpectations(t)
}

func TestService_MostWishlisted_FiltersStatus(t *testing.T) {
	shelves := new(MockShelfStats)
	reviews := new(MockReviewStats)
	catalog := new(MockCatalog)

	shelves.On("CountByBook", mock.Anything, []bson.ObjectID(nil), bookshelf.StatusWantToRead, int64(0), int64(10)).
		Return([]BookCount{}, int64(0), nil)

	service := NewService(shelves, reviews, catalog, silentLogger)
	resp, err := service.MostWishlisted(context.Background(), PageRequest{})

	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	assert.Equal(t, 0, resp.Pages)
	shelves.AssertExpectations(t)
}

func TestService_TopRated(t *testing.T) {
	best := &books.Book{ID: bson.NewObjectID(), Title: "Best"}

	t.Run("applies the minimum rating count", func(t *testing.T) {
		shelves := new(MockShelfStats)
		reviews := new(MockReviewStats)
		catalog := new(MockCatalog)

		reviews.On("TopRatedBooks", mock.Anything, []bson.ObjectID(nil), int64(2), int64(0), int64(10)).
			Return([]BookRating{{BookID: best.ID, AvgRating: 4.5, Count: 3}}, int64(1), nil)
		catalog.On("ByIDs", mock.Anything, []bson.ObjectID{best.ID}).Return([]*books.Book{best}, nil)

		service := NewService(shelves, reviews, catalog, silentLogger)
		resp, err := service.TopRated(context.Background(), PageRequest{})

		require.NoError(t, err)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "Best", resp.Items[0].Title)
		reviews.AssertExpectations(t)
	})

	t.Run("genre filter resolves to book ids first", func(t *testing.T) {
		genreID := bson.NewObjectID()

		shelves := new(MockShelfStats)
		reviews := new(MockReviewStats)
		catalog := new(MockCatalog)

		catalog.On("IDsByGenre", mock.Anything, "Fantasy").Return([]bson.ObjectID{genreID}, nil)
		reviews.On("TopRatedBooks", mock.Anything, []bson.ObjectID{genreID}, int64(2), int64(0), int64(10)).
			Return([]BookRating{}, int64(0), nil)

		service := NewService(shelves, reviews, catalog, silentLogger)
		_, err := service.TopRated(context.Background(), PageRequest{Genre: "Fantasy"})

		require.NoError(t, err)
		catalog.AssertExpectations(t)
		reviews.AssertExpectations(t)
	})
}

func TestService_Paging(t *testing.T) {
	shelves := new(MockShelfStats)
	reviews := new(MockReviewStats)
	catalog := new(MockCatalog)

	// Page 3 at limit 5 skips 10 groups.
	shelves.On("CountByBook", mock.Anything, []bson.ObjectID(nil), bookshelf.Status(""), int64(10), int64(5)).
		Return([]BookCount{}, int64(11), nil)

	service := NewService(shelves, reviews, catalog, silentLogger)
	resp, err := service.Trending(context.Background(), PageRequest{Page: 3, Limit: 5})

	require.NoError(t, err)
	assert.Equal(t, 3, resp.Page)
	assert.Equal(t, 3, resp.Pages)
	shelves.AssertExpectations(t)
}

func TestService_Genres(t *testing.T) {
	shelves := new(MockShelfStats)
	reviews := new(MockReviewStats)
	catalog := new(MockCatalog)

	catalog.On("Genres", mock.Anything).Return([]string{"Classics", "Fantasy"}, nil)

	service := NewService(shelves, reviews, catalog, silentLogger)
	genres, err := service.Genres(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"Classics", "Fantasy"}, genres)
	catalog.AssertExpectations(t)
}
