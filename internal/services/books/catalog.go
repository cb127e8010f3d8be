package books

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ByIDs batch-fetches books for read-time joins. Order is storage-defined.
func (s *Service) ByIDs(ctx context.Context, ids []bson.ObjectID) ([]*Book, error) {
	if len(ids) == 0 {
		return []*Book{}, nil
	}
	docs, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		s.log.Error("failed to batch-fetch books", "error", err)
		return nil, err
	}
	return docs, nil
}

// IDsByGenre resolves a genre tag to the set of book IDs carrying it. The
// result is never nil, so an unknown genre filters everything out instead of
// filtering nothing.
func (s *Service) IDsByGenre(ctx context.Context, genre string) ([]bson.ObjectID, error) {
	ids, err := s.repo.FindIDsByGenre(ctx, genre)
	if err != nil {
		s.log.Error("failed to resolve genre", "error", err, "genre", genre)
		return nil, err
	}
	if ids == nil {
		ids = []bson.ObjectID{}
	}
	return ids, nil
}

// Genres returns the de-duplicated, alphabetically sorted union of all genre
// tags across books with a non-empty genre list.
func (s *Service) Genres(ctx context.Context) ([]string, error) {
	docs, err := s.repo.FindWithGenres(ctx)
	if err != nil {
		s.log.Error("failed to list genres", "error", err)
		return nil, err
	}

	seen := make(map[string]struct{})
	genres := []string{}
	for _, b := range docs {
		for _, g := range b.Genre {
			if _, ok := seen[g]; !ok {
				seen[g] = struct{}{}
				genres = append(genres, g)
			}
		}
	}
	sort.Strings(genres)

	return genres, nil
}
