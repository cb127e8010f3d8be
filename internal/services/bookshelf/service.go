package bookshelf

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"bookburst/internal/services/books"
	"bookburst/internal/utils/sanitize"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// DefaultLimit is higher than other lists since the shelf is a primary view.
const DefaultLimit = 50

// Service handles bookshelf business logic
type Service struct {
	repo    Repository
	catalog BookCatalog
	log     *slog.Logger
}

// NewService creates a new bookshelf service
func NewService(repo Repository, catalog BookCatalog, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		log:     log,
	}
}

// ListRequest represents a shelf listing request
type ListRequest struct {
	Page   int    `query:"page" validate:"omitempty,min=1" example:"1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100" example:"50"`
	Status string `query:"status" validate:"omitempty,oneof=reading finished want-to-read" example:"reading"`
}

// AddItemRequest is the tagged variant input for adding to the shelf: either
// an existing book reference or inline new-book fields, never both required.
type AddItemRequest struct {
	BookID string              `json:"bookId" validate:"omitempty,len=24,hexadecimal" example:"683cdb8aa96ad71e8e075bd2"`
	Book   *books.NewBookInput `json:"book"`
	Status Status              `json:"status" validate:"required,oneof=reading finished want-to-read" example:"want-to-read"`
}

// UpdateStatusRequest represents a status update
type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required,oneof=reading finished want-to-read" example:"finished"`
}

// UpdateRatingRequest represents a rating update
type UpdateRatingRequest struct {
	Rating *float64 `json:"rating" validate:"required,min=0,max=5" example:"4.5"`
}

// UpdateNotesRequest represents a notes update
type UpdateNotesRequest struct {
	Notes *string `json:"notes" validate:"required" example:"Slow start, great ending."`
}

// ItemResponse represents a single shelf item response
type ItemResponse struct {
	Item *ItemWithBook `json:"item"`
}

// ListResponse is the standard paginated list envelope
type ListResponse struct {
	Items []*ItemWithBook `json:"items"`
	Page  int             `json:"page" example:"1"`
	Pages int             `json:"pages" example:"3"`
	Total int64           `json:"total" example:"125"`
}

// List retrieves a page of the user's shelf, most recently updated first,
// with each referenced book embedded.
func (s *Service) List(ctx context.Context, userID bson.ObjectID, req ListRequest) (*ListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = DefaultLimit
	}
	skip := (req.Page - 1) * req.Limit

	items, total, err := s.repo.ListByUser(ctx, userID, Status(req.Status), skip, req.Limit)
	if err != nil {
		s.log.Error(ErrListItems.Error(), "error", err, "user_id", userID.Hex())
		return nil, ErrListItems
	}

	withBooks, err := s.attachBooks(ctx, items)
	if err != nil {
		return nil, ErrListItems
	}

	return &ListResponse{
		Items: withBooks,
		Page:  req.Page,
		Pages: pageCount(total, req.Limit),
		Total: total,
	}, nil
}

// Add puts a book on the user's shelf. The book is either referenced by ID or
// supplied inline; inline books go through catalog dedupe first. Duplicate
// (user, book) pairs are rejected whether the pre-check or the unique index
// catches them.
func (s *Service) Add(ctx context.Context, userID bson.ObjectID, req AddItemRequest) (*ItemWithBook, error) {
	book, err := s.resolveBook(ctx, req)
	if err != nil {
		return nil, err
	}

	if existing, err := s.repo.FindByUserAndBook(ctx, userID, book.ID); err == nil && existing != nil {
		return nil, ErrAlreadyInShelf
	}

	now := time.Now()
	item := &Item{
		ID:        bson.NewObjectID(),
		UserID:    userID,
		BookID:    book.ID,
		Status:    req.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	switch req.Status {
	case StatusReading:
		item.StartDate = &now
	case StatusFinished:
		item.FinishDate = &now
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if errors.Is(err, ErrAlreadyInShelf) {
			return nil, ErrAlreadyInShelf
		}
		s.log.Error(ErrAddItem.Error(), "error", err, "user_id", userID.Hex(), "book_id", book.ID.Hex())
		return nil, ErrAddItem
	}

	return &ItemWithBook{Item: *item, Book: book}, nil
}

func (s *Service) resolveBook(ctx context.Context, req AddItemRequest) (*books.Book, error) {
	if req.BookID != "" {
		bookID, err := bson.ObjectIDFromHex(req.BookID)
		if err != nil {
			return nil, books.ErrBookNotFound
		}
		return s.catalog.Get(ctx, bookID)
	}
	if req.Book != nil {
		book, _, err := s.catalog.Resolve(ctx, *req.Book)
		return book, err
	}
	return nil, ErrBookRequired
}

// UpdateStatus changes the reading status of an owned item. Start/finish
// dates auto-populate on the first transition into reading/finished and are
// never overwritten once set.
func (s *Service) UpdateStatus(ctx context.Context, userID, itemID bson.ObjectID, status Status) (*ItemWithBook, error) {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	patch := UpdateItem{Status: &status}
	now := time.Now()
	if status == StatusReading && item.StartDate == nil {
		patch.StartDate = &now
	}
	if status == StatusFinished && item.FinishDate == nil {
		patch.FinishDate = &now
	}

	return s.applyUpdate(ctx, itemID, patch)
}

// UpdateRating sets the personal shelf rating (0-5) of an owned item.
func (s *Service) UpdateRating(ctx context.Context, userID, itemID bson.ObjectID, rating float64) (*ItemWithBook, error) {
	if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
		return nil, err
	}
	return s.applyUpdate(ctx, itemID, UpdateItem{Rating: &rating})
}

// UpdateNotes replaces the notes of an owned item.
func (s *Service) UpdateNotes(ctx context.Context, userID, itemID bson.ObjectID, notes string) (*ItemWithBook, error) {
	if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
		return nil, err
	}
	clean := sanitize.Clean(notes)
	return s.applyUpdate(ctx, itemID, UpdateItem{Notes: &clean})
}

// Remove hard-deletes an owned item; the book can be re-added afterwards.
func (s *Service) Remove(ctx context.Context, userID, itemID bson.ObjectID) error {
	if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, itemID); err != nil {
		s.log.Error(ErrRemoveItem.Error(), "error", err, "user_id", userID.Hex(), "item_id", itemID.Hex())
		return ErrRemoveItem
	}
	return nil
}

// ProfileItems returns every shelf item for a user (public profile view),
// books embedded, most recently updated first.
func (s *Service) ProfileItems(ctx context.Context, userID bson.ObjectID) ([]*ItemWithBook, error) {
	items, err := s.repo.ListAllByUser(ctx, userID)
	if err != nil {
		s.log.Error(ErrListItems.Error(), "error", err, "user_id", userID.Hex())
		return nil, ErrListItems
	}
	return s.attachBooks(ctx, items)
}

// ReadingHistory groups a user's finished books by finish month, newest month
// first. Items without a finish date fall back to their update time, so
// legacy rows still land in a month bucket.
func (s *Service) ReadingHistory(ctx context.Context, userID bson.ObjectID) ([]*HistoryGroup, error) {
	items, err := s.repo.ListFinishedByUser(ctx, userID)
	if err != nil {
		s.log.Error(ErrListItems.Error(), "error", err, "user_id", userID.Hex())
		return nil, ErrListItems
	}

	withBooks, err := s.attachBooks(ctx, items)
	if err != nil {
		return nil, ErrListItems
	}

	groups := make(map[string]*HistoryGroup)
	for _, it := range withBooks {
		finished := it.UpdatedAt
		if it.FinishDate != nil {
			finished = *it.FinishDate
		}
		key := finished.UTC().Format("2006-01")
		g, ok := groups[key]
		if !ok {
			g = &HistoryGroup{Date: finished}
			groups[key] = g
		}
		g.Books = append(g.Books, it)
	}

	history := make([]*HistoryGroup, 0, len(groups))
	for _, g := range groups {
		history = append(history, g)
	}
	sort.Slice(history, func(i, j int) bool {
		return history[i].Date.After(history[j].Date)
	})

	return history, nil
}

// ownedItem loads an item and enforces ownership: missing item and foreign
// item are distinct failures (404 vs 403 to the API).
func (s *Service) ownedItem(ctx context.Context, userID, itemID bson.ObjectID) (*Item, error) {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		s.log.Error("failed to load bookshelf item", "error", err, "item_id", itemID.Hex())
		return nil, ErrUpdateItem
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	if item.UserID != userID {
		return nil, ErrNotOwner
	}
	return item, nil
}

func (s *Service) applyUpdate(ctx context.Context, itemID bson.ObjectID, patch UpdateItem) (*ItemWithBook, error) {
	updated, err := s.repo.Update(ctx, itemID, patch)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		s.log.Error(ErrUpdateItem.Error(), "error", err, "item_id", itemID.Hex())
		return nil, ErrUpdateItem
	}

	withBooks, err := s.attachBooks(ctx, []*Item{updated})
	if err != nil {
		return nil, ErrUpdateItem
	}
	return withBooks[0], nil
}

// attachBooks performs the read-time join: batch-fetch the referenced books
// and pair each item with its document.
func (s *Service) attachBooks(ctx context.Context, items []*Item) ([]*ItemWithBook, error) {
	ids := make([]bson.ObjectID, 0, len(items))
	seen := make(map[bson.ObjectID]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.BookID]; !ok {
			seen[it.BookID] = struct{}{}
			ids = append(ids, it.BookID)
		}
	}

	byID := make(map[bson.ObjectID]*books.Book, len(ids))
	if len(ids) > 0 {
		docs, err := s.catalog.ByIDs(ctx, ids)
		if err != nil {
			s.log.Error("failed to fetch shelf books", "error", err)
			return nil, err
		}
		for _, b := range docs {
			byID[b.ID] = b
		}
	}

	out := make([]*ItemWithBook, 0, len(items))
	for _, it := range items {
		out = append(out, &ItemWithBook{Item: *it, Book: byID[it.BookID]})
	}
	return out, nil
}

func pageCount(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
