package books

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"bookburst/internal/utils/sanitize"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// SearchLimit caps search results; search is unpaginated.
const SearchLimit = 20

// Service handles book catalog business logic
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService creates a new books service
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// Get returns a book by ID
func (s *Service) Get(ctx context.Context, id bson.ObjectID) (*Book, error) {
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.log.Error("failed to fetch book", "error", err, "book_id", id.Hex())
		return nil, ErrSearchBooks
	}
	if book == nil {
		return nil, ErrBookNotFound
	}
	return book, nil
}

// Search runs full-text search and falls back to case-insensitive substring
// matching across title/author/isbn when the text index finds nothing.
func (s *Service) Search(ctx context.Context, q string) ([]*Book, error) {
	q = strings.TrimSpace(q)
	if len(q) < 2 {
		return nil, ErrQueryTooShort
	}

	results, err := s.repo.TextSearch(ctx, q, SearchLimit)
	if err != nil {
		s.log.Error("text search failed", "error", err, "q", q)
		return nil, ErrSearchBooks
	}
	if len(results) > 0 {
		return results, nil
	}

	results, err = s.repo.SubstringSearch(ctx, q, SearchLimit)
	if err != nil {
		s.log.Error("substring search failed", "error", err, "q", q)
		return nil, ErrSearchBooks
	}
	return results, nil
}

// Resolve returns the catalog entry for the given input, creating it only if
// no duplicate exists. Dedupe order: ISBN first, then case-insensitive
// (title, author). The bool result reports whether a new document was created.
func (s *Service) Resolve(ctx context.Context, input NewBookInput) (*Book, bool, error) {
	if input.ISBN != "" {
		existing, err := s.repo.FindByISBN(ctx, strings.TrimSpace(input.ISBN))
		if err != nil {
			s.log.Error("isbn lookup failed", "error", err, "isbn", input.ISBN)
			return nil, false, ErrCreateBook
		}
		if existing != nil {
			return existing, false, nil
		}
	}

	title := strings.TrimSpace(input.Title)
	author := strings.TrimSpace(input.Author)

	existing, err := s.repo.FindByTitleAuthor(ctx, title, author)
	if err != nil {
		s.log.Error("title/author lookup failed", "error", err, "title", title)
		return nil, false, ErrCreateBook
	}
	if existing != nil {
		return existing, false, nil
	}

	now := time.Now()
	book := &Book{
		ID:            bson.NewObjectID(),
		Title:         title,
		Author:        author,
		Description:   sanitize.Clean(input.Description),
		CoverImage:    strings.TrimSpace(input.CoverImage),
		ISBN:          strings.TrimSpace(input.ISBN),
		PageCount:     input.PageCount,
		PublishedDate: input.PublishedDate,
		Publisher:     strings.TrimSpace(input.Publisher),
		Genre:         input.Genre,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if book.Genre == nil {
		book.Genre = []string{}
	}

	if err := s.repo.Create(ctx, book); err != nil {
		s.log.Error(ErrCreateBook.Error(), "error", err, "title", title)
		return nil, false, ErrCreateBook
	}

	return book, true, nil
}
