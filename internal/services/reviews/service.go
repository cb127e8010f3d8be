package reviews

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"bookburst/internal/services/books"
	"bookburst/internal/services/users"
	"bookburst/internal/utils/sanitize"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// DefaultLimit is the page size used when the client does not ask for one.
const DefaultLimit = 10

// Service handles review business logic
type Service struct {
	repo    Repository
	catalog BookCatalog
	userDir UserDirectory
	log     *slog.Logger
}

// NewService creates a new reviews service
func NewService(repo Repository, catalog BookCatalog, userDir UserDirectory, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		userDir: userDir,
		log:     log,
	}
}

// CreateReviewRequest represents a review creation request. Recommend
// defaults to true when omitted.
type CreateReviewRequest struct {
	BookID    string `json:"bookId" validate:"required,len=24,hexadecimal" example:"683cdb8aa96ad71e8e075bd2"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5" example:"4"`
	Content   string `json:"content" validate:"required" example:"Couldn't put it down."`
	Recommend *bool  `json:"recommend" example:"true"`
}

// ListRequest represents a paginated review listing request
type ListRequest struct {
	Page  int `query:"page" validate:"omitempty,min=1" example:"1"`
	Limit int `query:"limit" validate:"omitempty,min=1,max=100" example:"10"`
}

// RecentRequest adds the optional genre filter to a listing request
type RecentRequest struct {
	Page  int    `query:"page" validate:"omitempty,min=1" example:"1"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=100" example:"10"`
	Genre string `query:"genre" example:"Science Fiction"`
}

// ReviewResponse represents a single review response
type ReviewResponse struct {
	Review *ReviewWithRefs `json:"review"`
}

// ListResponse is the standard paginated list envelope
type ListResponse struct {
	Items []*ReviewWithRefs `json:"items"`
	Page  int               `json:"page" example:"1"`
	Pages int               `json:"pages" example:"3"`
	Total int64             `json:"total" example:"27"`
}

// Create stores a new review. The book must exist and the user must not have
// reviewed it before; the duplicate is rejected both by the pre-check and by
// the unique index.
func (s *Service) Create(ctx context.Context, userID bson.ObjectID, req CreateReviewRequest) (*ReviewWithRefs, error) {
	bookID, err := bson.ObjectIDFromHex(req.BookID)
	if err != nil {
		return nil, books.ErrBookNotFound
	}

	_, err = s.catalog.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.repo.FindByUserAndBook(ctx, userID, bookID); err == nil && existing != nil {
		return nil, ErrAlreadyReviewed
	}

	recommend := true
	if req.Recommend != nil {
		recommend = *req.Recommend
	}

	now := time.Now()
	review := &Review{
		ID:        bson.NewObjectID(),
		UserID:    userID,
		BookID:    bookID,
		Rating:    req.Rating,
		Content:   sanitize.Clean(req.Content),
		Recommend: recommend,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		if errors.Is(err, ErrAlreadyReviewed) {
			return nil, ErrAlreadyReviewed
		}
		s.log.Error(ErrCreateReview.Error(), "error", err, "user_id", userID.Hex(), "book_id", bookID.Hex())
		return nil, ErrCreateReview
	}

	populated, err := s.populate(ctx, []*Review{review})
	if err != nil {
		return nil, ErrCreateReview
	}
	return populated[0], nil
}

// ByBook returns a page of a book's reviews, newest first.
func (s *Service) ByBook(ctx context.Context, bookID bson.ObjectID, req ListRequest) (*ListResponse, error) {
	page, limit := normalize(req.Page, req.Limit)

	revs, total, err := s.repo.ListByBook(ctx, bookID, (page-1)*limit, limit)
	if err != nil {
		s.log.Error(ErrListReviews.Error(), "error", err, "book_id", bookID.Hex())
		return nil, ErrListReviews
	}
	return s.listResponse(ctx, revs, page, limit, total)
}

// ByUser returns a page of a user's reviews, newest first.
func (s *Service) ByUser(ctx context.Context, userID bson.ObjectID, req ListRequest) (*ListResponse, error) {
	page, limit := normalize(req.Page, req.Limit)

	revs, total, err := s.repo.ListByUser(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		s.log.Error(ErrListReviews.Error(), "error", err, "user_id", userID.Hex())
		return nil, ErrListReviews
	}
	return s.listResponse(ctx, revs, page, limit, total)
}

// ForProfile returns every review by a user, newest first (public profile).
func (s *Service) ForProfile(ctx context.Context, userID bson.ObjectID) ([]*ReviewWithRefs, error) {
	revs, err := s.repo.ListAllByUser(ctx, userID)
	if err != nil {
		s.log.Error(ErrListReviews.Error(), "error", err, "user_id", userID.Hex())
		return nil, ErrListReviews
	}
	return s.populate(ctx, revs)
}

// Recent returns the newest reviews across all users, optionally restricted
// to books carrying a genre tag.
func (s *Service) Recent(ctx context.Context, req RecentRequest) (*ListResponse, error) {
	page, limit := normalize(req.Page, req.Limit)

	var bookIDs []bson.ObjectID
	if req.Genre != "" {
		ids, err := s.catalog.IDsByGenre(ctx, req.Genre)
		if err != nil {
			return nil, ErrListReviews
		}
		bookIDs = ids
	}

	revs, total, err := s.repo.ListRecent(ctx, bookIDs, (page-1)*limit, limit)
	if err != nil {
		s.log.Error(ErrListReviews.Error(), "error", err, "genre", req.Genre)
		return nil, ErrListReviews
	}
	return s.listResponse(ctx, revs, page, limit, total)
}

func (s *Service) listResponse(ctx context.Context, revs []*Review, page, limit int, total int64) (*ListResponse, error) {
	populated, err := s.populate(ctx, revs)
	if err != nil {
		return nil, ErrListReviews
	}
	return &ListResponse{
		Items: populated,
		Page:  page,
		Pages: pageCount(total, limit),
		Total: total,
	}, nil
}

// populate performs the read-time join of user and book references.
func (s *Service) populate(ctx context.Context, revs []*Review) ([]*ReviewWithRefs, error) {
	userIDs := make([]bson.ObjectID, 0, len(revs))
	bookIDs := make([]bson.ObjectID, 0, len(revs))
	seenUsers := make(map[bson.ObjectID]struct{}, len(revs))
	seenBooks := make(map[bson.ObjectID]struct{}, len(revs))
	for _, r := range revs {
		if _, ok := seenUsers[r.UserID]; !ok {
			seenUsers[r.UserID] = struct{}{}
			userIDs = append(userIDs, r.UserID)
		}
		if _, ok := seenBooks[r.BookID]; !ok {
			seenBooks[r.BookID] = struct{}{}
			bookIDs = append(bookIDs, r.BookID)
		}
	}

	usersByID := make(map[bson.ObjectID]*users.User, len(userIDs))
	if len(userIDs) > 0 {
		docs, err := s.userDir.FindByIDs(ctx, userIDs)
		if err != nil {
			s.log.Error("failed to fetch review users", "error", err)
			return nil, err
		}
		for _, u := range docs {
			usersByID[u.ID] = u
		}
	}

	booksByID := make(map[bson.ObjectID]*books.Book, len(bookIDs))
	if len(bookIDs) > 0 {
		docs, err := s.catalog.ByIDs(ctx, bookIDs)
		if err != nil {
			s.log.Error("failed to fetch review books", "error", err)
			return nil, err
		}
		for _, b := range docs {
			booksByID[b.ID] = b
		}
	}

	out := make([]*ReviewWithRefs, 0, len(revs))
	for _, r := range revs {
		out = append(out, &ReviewWithRefs{
			Review: *r,
			User:   usersByID[r.UserID],
			Book:   booksByID[r.BookID],
		})
	}
	return out, nil
}

func normalize(page, limit int) (int, int) {
	if page == 0 {
		page = 1
	}
	if limit == 0 {
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
