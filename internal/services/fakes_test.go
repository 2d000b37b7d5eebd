package services

import (
	"context"
	"sort"
	"strings"

	"github.com/simple-diaries/apiserver/internal/store"
	"github.com/simple-diaries/apiserver/types"
)

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	users  map[int64]types.User
	nextID int64

	// createErr, when set, is returned by Create to simulate storage
	// failures such as the unique-constraint race.
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]types.User{}}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	if r.createErr != nil {
		return types.User{}, r.createErr
	}
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicateEmail
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// fakeEntryRepo is an in-memory EntryRepository mirroring the SQL
// repository's not-found-before-forbidden contract.
type fakeEntryRepo struct {
	entries map[int64]types.Entry
	nextID  int64

	// lastQuery records the name of the most recent paged query method.
	lastQuery string
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{entries: map[int64]types.Entry{}}
}

func (r *fakeEntryRepo) GetByID(_ context.Context, id int64) (types.Entry, error) {
	entry, ok := r.entries[id]
	if !ok {
		return types.Entry{}, store.ErrNotFound
	}
	return entry, nil
}

func (r *fakeEntryRepo) Create(_ context.Context, entry types.Entry) (types.Entry, error) {
	r.nextID++
	entry.ID = r.nextID
	r.entries[entry.ID] = entry
	return entry, nil
}

func (r *fakeEntryRepo) Update(_ context.Context, entry types.Entry, ownerID int64) (types.Entry, error) {
	stored, ok := r.entries[entry.ID]
	if !ok {
		return types.Entry{}, store.ErrNotFound
	}
	if stored.UserID != ownerID {
		return types.Entry{}, store.ErrForbidden
	}
	stored.Title = entry.Title
	stored.Content = entry.Content
	stored.EntryDate = entry.EntryDate
	r.entries[stored.ID] = stored
	return stored, nil
}

func (r *fakeEntryRepo) Delete(_ context.Context, id, ownerID int64) error {
	stored, ok := r.entries[id]
	if !ok {
		return store.ErrNotFound
	}
	if stored.UserID != ownerID {
		return store.ErrForbidden
	}
	delete(r.entries, id)
	return nil
}

func (r *fakeEntryRepo) ListByUser(_ context.Context, userID int64, offset, limit int) ([]types.Entry, int, error) {
	r.lastQuery = "ListByUser"
	return r.page(r.filter(userID, func(types.Entry) bool { return true }), offset, limit)
}

func (r *fakeEntryRepo) FindByDate(_ context.Context, userID int64, date types.Date, offset, limit int) ([]types.Entry, int, error) {
	r.lastQuery = "FindByDate"
	return r.page(r.filter(userID, func(e types.Entry) bool {
		return e.EntryDate.Equal(date)
	}), offset, limit)
}

func (r *fakeEntryRepo) FindInRange(_ context.Context, userID int64, start, end types.Date, offset, limit int) ([]types.Entry, int, error) {
	r.lastQuery = "FindInRange"
	return r.page(r.filter(userID, func(e types.Entry) bool {
		return !e.EntryDate.Before(start.Time) && !e.EntryDate.After(end.Time)
	}), offset, limit)
}

func (r *fakeEntryRepo) SearchKeyword(_ context.Context, userID int64, keyword string, offset, limit int) ([]types.Entry, int, error) {
	r.lastQuery = "SearchKeyword"
	return r.page(r.filter(userID, matchKeyword(keyword)), offset, limit)
}

func (r *fakeEntryRepo) SearchKeywordInRange(_ context.Context, userID int64, keyword string, start, end types.Date, offset, limit int) ([]types.Entry, int, error) {
	r.lastQuery = "SearchKeywordInRange"
	return r.page(r.filter(userID, func(e types.Entry) bool {
		return matchKeyword(keyword)(e) && !e.EntryDate.Before(start.Time) && !e.EntryDate.After(end.Time)
	}), offset, limit)
}

func matchKeyword(keyword string) func(types.Entry) bool {
	lower := strings.ToLower(keyword)
	return func(e types.Entry) bool {
		return strings.Contains(strings.ToLower(e.Title), lower) ||
			strings.Contains(strings.ToLower(e.Content), lower)
	}
}

func (r *fakeEntryRepo) filter(userID int64, keep func(types.Entry) bool) []types.Entry {
	var matched []types.Entry
	for _, entry := range r.entries {
		if entry.UserID == userID && keep(entry) {
			matched = append(matched, entry)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].EntryDate.Equal(matched[j].EntryDate) {
			return matched[i].EntryDate.After(matched[j].EntryDate.Time)
		}
		return matched[i].ID > matched[j].ID
	})
	return matched
}

func (r *fakeEntryRepo) page(matched []types.Entry, offset, limit int) ([]types.Entry, int, error) {
	total := len(matched)
	if offset >= total {
		return []types.Entry{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}
