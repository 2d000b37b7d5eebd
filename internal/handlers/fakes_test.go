package handlers

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/simple-diaries/apiserver/internal/auth"
	"github.com/simple-diaries/apiserver/internal/services"
	"github.com/simple-diaries/apiserver/internal/store"
	"github.com/simple-diaries/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// memUserRepo is an in-memory services.UserRepository for handler tests.
type memUserRepo struct {
	users  map[int64]types.User
	nextID int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[int64]types.User{}}
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *memUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicateEmail
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	r.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// memEntryRepo is an in-memory services.EntryRepository mirroring the SQL
// repository's not-found-before-forbidden contract.
type memEntryRepo struct {
	entries map[int64]types.Entry
	nextID  int64
}

func newMemEntryRepo() *memEntryRepo {
	return &memEntryRepo{entries: map[int64]types.Entry{}}
}

func (r *memEntryRepo) GetByID(_ context.Context, id int64) (types.Entry, error) {
	entry, ok := r.entries[id]
	if !ok {
		return types.Entry{}, store.ErrNotFound
	}
	return entry, nil
}

func (r *memEntryRepo) Create(_ context.Context, entry types.Entry) (types.Entry, error) {
	r.nextID++
	entry.ID = r.nextID
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = entry.CreatedAt
	r.entries[entry.ID] = entry
	return entry, nil
}

func (r *memEntryRepo) Update(_ context.Context, entry types.Entry, ownerID int64) (types.Entry, error) {
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
	stored.UpdatedAt = time.Now()
	r.entries[stored.ID] = stored
	return stored, nil
}

func (r *memEntryRepo) Delete(_ context.Context, id, ownerID int64) error {
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

func (r *memEntryRepo) ListByUser(_ context.Context, userID int64, offset, limit int) ([]types.Entry, int, error) {
	return r.page(r.matching(userID, func(types.Entry) bool { return true }), offset, limit)
}

func (r *memEntryRepo) FindByDate(_ context.Context, userID int64, date types.Date, offset, limit int) ([]types.Entry, int, error) {
	return r.page(r.matching(userID, func(e types.Entry) bool {
		return e.EntryDate.Equal(date)
	}), offset, limit)
}

func (r *memEntryRepo) FindInRange(_ context.Context, userID int64, start, end types.Date, offset, limit int) ([]types.Entry, int, error) {
	return r.page(r.matching(userID, inRange(start, end)), offset, limit)
}

func (r *memEntryRepo) SearchKeyword(_ context.Context, userID int64, keyword string, offset, limit int) ([]types.Entry, int, error) {
	return r.page(r.matching(userID, containsKeyword(keyword)), offset, limit)
}

func (r *memEntryRepo) SearchKeywordInRange(_ context.Context, userID int64, keyword string, start, end types.Date, offset, limit int) ([]types.Entry, int, error) {
	kw := containsKeyword(keyword)
	rng := inRange(start, end)
	return r.page(r.matching(userID, func(e types.Entry) bool {
		return kw(e) && rng(e)
	}), offset, limit)
}

func containsKeyword(keyword string) func(types.Entry) bool {
	lower := strings.ToLower(keyword)
	return func(e types.Entry) bool {
		return strings.Contains(strings.ToLower(e.Title), lower) ||
			strings.Contains(strings.ToLower(e.Content), lower)
	}
}

func inRange(start, end types.Date) func(types.Entry) bool {
	return func(e types.Entry) bool {
		return !e.EntryDate.Before(start.Time) && !e.EntryDate.After(end.Time)
	}
}

func (r *memEntryRepo) matching(userID int64, keep func(types.Entry) bool) []types.Entry {
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

func (r *memEntryRepo) page(matched []types.Entry, offset, limit int) ([]types.Entry, int, error) {
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

// testEnv bundles the wired router and collaborators for handler tests.
type testEnv struct {
	router    *chi.Mux
	tokens    *auth.TokenService
	userRepo  *memUserRepo
	entryRepo *memEntryRepo
}

func newTestEnv() *testEnv {
	userRepo := newMemUserRepo()
	entryRepo := newMemEntryRepo()

	tokens := auth.NewTokenService("handler-test-secret-of-sufficient-length", time.Hour)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)

	authService := services.NewAuthService(userRepo, hasher, tokens)
	userService := services.NewUserService(userRepo)
	entryService := services.NewEntryService(entryRepo)
	searchService := services.NewSearchService(entryRepo)

	router := chi.NewRouter()
	router.Route("/api/auth", func(r chi.Router) {
		AuthRouter(r, authService, userService, tokens)
	})
	router.Route("/api/diary-entries", func(r chi.Router) {
		EntryRouter(r, entryService, searchService, RequireAuth(tokens))
	})

	return &testEnv{
		router:    router,
		tokens:    tokens,
		userRepo:  userRepo,
		entryRepo: entryRepo,
	}
}
