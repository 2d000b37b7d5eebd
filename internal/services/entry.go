package services

import (
	"context"

	"github.com/simple-diaries/apiserver/internal/store"
	"github.com/simple-diaries/apiserver/types"
)

// EntryRepository defines persistence operations for diary entries.
// Update and Delete enforce existence and ownership inside one transaction
// and report store.ErrNotFound or store.ErrForbidden accordingly.
type EntryRepository interface {
	GetByID(ctx context.Context, id int64) (types.Entry, error)
	Create(ctx context.Context, entry types.Entry) (types.Entry, error)
	Update(ctx context.Context, entry types.Entry, ownerID int64) (types.Entry, error)
	Delete(ctx context.Context, id, ownerID int64) error
	ListByUser(ctx context.Context, userID int64, offset, limit int) ([]types.Entry, int, error)
	FindByDate(ctx context.Context, userID int64, date types.Date, offset, limit int) ([]types.Entry, int, error)
	FindInRange(ctx context.Context, userID int64, start, end types.Date, offset, limit int) ([]types.Entry, int, error)
	SearchKeyword(ctx context.Context, userID int64, keyword string, offset, limit int) ([]types.Entry, int, error)
	SearchKeywordInRange(ctx context.Context, userID int64, keyword string, start, end types.Date, offset, limit int) ([]types.Entry, int, error)
}

// EntryService encapsulates diary-entry use-cases for a single
// authenticated user. Every operation is scoped to the requesting user;
// no path ever reads or mutates an entry without an ownership check.
type EntryService struct {
	repo EntryRepository
}

func NewEntryService(repo EntryRepository) *EntryService {
	return &EntryService{repo: repo}
}

// authorizeOwner allows access iff the entry belongs to userID. Callers
// must establish existence first so an absent entry is reported as
// not-found before ownership is ever evaluated.
func authorizeOwner(entry types.Entry, userID int64) error {
	if entry.UserID != userID {
		return store.ErrForbidden
	}
	return nil
}

func (s *EntryService) Create(ctx context.Context, userID int64, title, content string, entryDate types.Date) (types.Entry, error) {
	return s.repo.Create(ctx, types.Entry{
		Title:     title,
		Content:   content,
		EntryDate: entryDate,
		UserID:    userID,
	})
}

// Get fetches one entry for the requesting user. A missing id yields
// store.ErrNotFound; an entry owned by someone else store.ErrForbidden.
func (s *EntryService) Get(ctx context.Context, id, userID int64) (types.Entry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.Entry{}, err
	}
	if err := authorizeOwner(entry, userID); err != nil {
		return types.Entry{}, err
	}
	return entry, nil
}

// List returns a page of the user's entries, newest diary date first.
func (s *EntryService) List(ctx context.Context, userID int64, offset, limit int) ([]types.Entry, int, error) {
	return s.repo.ListByUser(ctx, userID, offset, limit)
}

func (s *EntryService) Update(ctx context.Context, id, userID int64, title, content string, entryDate types.Date) (types.Entry, error) {
	return s.repo.Update(ctx, types.Entry{
		ID:        id,
		Title:     title,
		Content:   content,
		EntryDate: entryDate,
	}, userID)
}

func (s *EntryService) Delete(ctx context.Context, id, userID int64) error {
	return s.repo.Delete(ctx, id, userID)
}
