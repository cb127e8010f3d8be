package explore

import (
	"context"
	"log/slog"

	"bookburst/internal/services/books"
	"bookburst/internal/services/bookshelf"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// DefaultLimit is the page size when the request does not set one.
const DefaultLimit = 10

// minRatingCount keeps one-off ratings out of the top-rated list.
const minRatingCount = 2

// ShelfStats aggregates bookshelf items for ranking.
type ShelfStats interface {
	// CountByBook groups shelf items by book and returns pages of the
	// groups sorted by count descending. A non-empty status restricts the
	// aggregation to items with that status. A nil bookIDs means no book
	// filter; an empty non-nil slice matches nothing.
	CountByBook(ctx context.Context, bookIDs []bson.ObjectID, status bookshelf.Status, skip, limit int64) ([]BookCount, int64, error)
}

// ReviewStats aggregates reviews for ranking.
type ReviewStats interface {
	// TopRatedBooks groups reviews by book, keeps groups with at least
	// minCount ratings, and returns pages sorted by average rating
	// descending. bookIDs follows the same nil/empty convention as
	// ShelfStats.CountByBook.
	TopRatedBooks(ctx context.Context, bookIDs []bson.ObjectID, minCount, skip, limit int64) ([]BookRating, int64, error)
}

// Catalog is the slice of the book service the explore endpoints need.
type Catalog interface {
	ByIDs(ctx context.Context, ids []bson.ObjectID) ([]*books.Book, error)
	IDsByGenre(ctx context.Context, genre string) ([]bson.ObjectID, error)
	Genres(ctx context.Context) ([]string, error)
}

// Service computes community-wide ranked book lists.
type Service struct {
	shelves ShelfStats
	reviews ReviewStats
	catalog Catalog
	log     *slog.Logger
}

func NewService(shelves ShelfStats, reviews ReviewStats, catalog Catalog, log *slog.Logger) *Service {
	return &Service{shelves: shelves, reviews: reviews, catalog: catalog, log: log}
}

// Trending lists books by how many shelves hold them, most-shelved first.
func (s *Service) Trending(ctx context.Context, req PageRequest) (*BookListResponse, error) {
	return s.shelfRanking(ctx, req, "")
}

// MostWishlisted lists books by how many want-to-read shelves hold them.
func (s *Service) MostWishlisted(ctx context.Context, req PageRequest) (*BookListResponse, error) {
	return s.shelfRanking(ctx, req, bookshelf.StatusWantToRead)
}

// TopRated lists books by average review rating, best first. Books with
// fewer than two ratings are excluded.
func (s *Service) TopRated(ctx context.Context, req PageRequest) (*BookListResponse, error) {
	page, limit := normalize(req)

	bookIDs, err := s.genreFilter(ctx, req.Genre)
	if err != nil {
		return nil, err
	}

	skip := int64((page - 1) * limit)
	groups, total, err := s.reviews.TopRatedBooks(ctx, bookIDs, minRatingCount, skip, int64(limit))
	if err != nil {
		s.log.Error("top rated aggregation failed", "error", err)
		return nil, ErrListBooks
	}

	ids := make([]bson.ObjectID, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.BookID)
	}

	items, err := s.fetchOrdered(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &BookListResponse{Items: items, Page: page, Pages: pageCount(total, limit), Total: total}, nil
}

// Genres lists every genre present in the catalog, sorted.
func (s *Service) Genres(ctx context.Context) ([]string, error) {
	genres, err := s.catalog.Genres(ctx)
	if err != nil {
		s.log.Error("genre listing failed", "error", err)
		return nil, ErrListGenres
	}
	return genres, nil
}

func (s *Service) shelfRanking(ctx context.Context, req PageRequest, status bookshelf.Status) (*BookListResponse, error) {
	page, limit := normalize(req)

	bookIDs, err := s.genreFilter(ctx, req.Genre)
	if err != nil {
		return nil, err
	}

	skip := int64((page - 1) * limit)
	groups, total, err := s.shelves.CountByBook(ctx, bookIDs, status, skip, int64(limit))
	if err != nil {
		s.log.Error("shelf ranking aggregation failed", "error", err, "status", status)
		return nil, ErrListBooks
	}

	ids := make([]bson.ObjectID, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.BookID)
	}

	items, err := s.fetchOrdered(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &BookListResponse{Items: items, Page: page, Pages: pageCount(total, limit), Total: total}, nil
}

// genreFilter resolves a genre to the set of book IDs carrying it. A blank
// genre means no filter (nil). An unknown genre yields an empty non-nil
// slice, which downstream aggregations must treat as match-nothing.
func (s *Service) genreFilter(ctx context.Context, genre string) ([]bson.ObjectID, error) {
	if genre == "" {
		return nil, nil
	}
	ids, err := s.catalog.IDsByGenre(ctx, genre)
	if err != nil {
		s.log.Error("genre filter resolution failed", "error", err, "genre", genre)
		return nil, ErrListBooks
	}
	return ids, nil
}

// fetchOrdered batch-loads books and re-orders them to match the aggregate
// ranking. The batch lookup does not preserve input order, so the join must.
func (s *Service) fetchOrdered(ctx context.Context, ids []bson.ObjectID) ([]*books.Book, error) {
	if len(ids) == 0 {
		return []*books.Book{}, nil
	}
	fetched, err := s.catalog.ByIDs(ctx, ids)
	if err != nil {
		s.log.Error("ranked book fetch failed", "error", err)
		return nil, ErrListBooks
	}
	return orderByIDs(fetched, ids), nil
}

// orderByIDs arranges fetched books in the order of ids, dropping IDs that
// did not resolve to a book.
func orderByIDs(fetched []*books.Book, ids []bson.ObjectID) []*books.Book {
	byID := make(map[bson.ObjectID]*books.Book, len(fetched))
	for _, b := range fetched {
		byID[b.ID] = b
	}
	ordered := make([]*books.Book, 0, len(ids))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			ordered = append(ordered, b)
		}
	}
	return ordered
}

func normalize(req PageRequest) (page, limit int) {
	page, limit = req.Page, req.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	return page, limit
}

func pageCount(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
