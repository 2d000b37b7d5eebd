package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/simple-diaries/apiserver/internal/services"
	"github.com/simple-diaries/apiserver/internal/store"
	"github.com/simple-diaries/apiserver/types"
)

// EntryHandler provides HTTP handlers for diary entries. Every route is
// behind the auth middleware; the acting user always comes from the
// request context, never from client input.
type EntryHandler struct {
	entryService  *services.EntryService
	searchService *services.SearchService
}

// NewEntryHandler constructs a handler with the provided services.
func NewEntryHandler(entryService *services.EntryService, searchService *services.SearchService) *EntryHandler {
	return &EntryHandler{
		entryService:  entryService,
		searchService: searchService,
	}
}

// EntryRouter registers diary-entry routes on the given router.
func EntryRouter(
	r chi.Router,
	entryService *services.EntryService,
	searchService *services.SearchService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewEntryHandler(entryService, searchService)

	r.Use(authMiddleware)
	r.Get("/", handler.ListEntries)
	r.Post("/", handler.CreateEntry)
	r.Get("/search", handler.SearchEntries)
	r.Route("/{entryID}", func(r chi.Router) {
		r.Get("/", handler.GetEntry)
		r.Put("/", handler.UpdateEntry)
		r.Delete("/", handler.DeleteEntry)
	})
}

func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	page, size, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.entryService.List(r.Context(), userID, offset, size)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list entries")
		return
	}

	writeJSON(w, http.StatusOK, newEntryListResponse(items, page, size, total))
}

func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseEntryID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.entryService.Get(r.Context(), id, userID)
	if err != nil {
		writeEntryError(w, err, "failed to fetch entry")
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (h *EntryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	req, err := parseEntryBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.entryService.Create(r.Context(), userID, req.Title, req.Content, req.EntryDate)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create entry")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *EntryHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseEntryID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := parseEntryBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.entryService.Update(r.Context(), id, userID, req.Title, req.Content, req.EntryDate)
	if err != nil {
		writeEntryError(w, err, "failed to update entry")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *EntryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseEntryID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.entryService.Delete(r.Context(), id, userID); err != nil {
		writeEntryError(w, err, "failed to delete entry")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SearchEntries filters the user's entries by optional keyword, date
// range, and exact date query parameters.
func (h *EntryHandler) SearchEntries(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	page, size, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter, err := parseSearchFilter(r, userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.searchService.Search(r.Context(), filter, offset, size)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search entries")
		return
	}

	writeJSON(w, http.StatusOK, newEntryListResponse(items, page, size, total))
}

// EntryUpsertRequest is the JSON payload for create and update.
type EntryUpsertRequest struct {
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	EntryDate types.Date `json:"entry_date"`
}

// EntryListResponse is the paginated list response payload.
type EntryListResponse struct {
	Items      []types.Entry `json:"items"`
	Page       int           `json:"page"`
	Size       int           `json:"size"`
	Total      int           `json:"total"`
	TotalPages int           `json:"total_pages"`
}

func newEntryListResponse(items []types.Entry, page, size, total int) EntryListResponse {
	return EntryListResponse{
		Items:      items,
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: totalPages(total, size),
	}
}

func writeEntryError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "entry not found")
	case errors.Is(err, store.ErrForbidden):
		writeError(w, http.StatusForbidden, "you don't have permission to access this entry")
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func parseEntryID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "entryID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid entry id")
	}
	return id, nil
}

func parseEntryBody(r *http.Request) (EntryUpsertRequest, error) {
	var req EntryUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return EntryUpsertRequest{}, errors.New("invalid request body")
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return EntryUpsertRequest{}, errors.New("title is required")
	}
	if len(req.Title) > types.MaxEntryTitleLen {
		return EntryUpsertRequest{}, fmt.Errorf("title must not exceed %d characters", types.MaxEntryTitleLen)
	}

	if strings.TrimSpace(req.Content) == "" {
		return EntryUpsertRequest{}, errors.New("content is required")
	}
	if len(req.Content) > types.MaxEntryContentLen {
		return EntryUpsertRequest{}, fmt.Errorf("content must not exceed %d characters", types.MaxEntryContentLen)
	}

	if req.EntryDate.IsZero() {
		return EntryUpsertRequest{}, errors.New("entry date is required")
	}

	return req, nil
}

func parseSearchFilter(r *http.Request, userID int64) (services.SearchFilter, error) {
	query := r.URL.Query()
	filter := services.SearchFilter{
		UserID:  userID,
		Keyword: query.Get("keyword"),
	}

	var err error
	if filter.Date, err = parseOptionalDate(query.Get("date")); err != nil {
		return services.SearchFilter{}, err
	}
	if filter.StartDate, err = parseOptionalDate(query.Get("start_date")); err != nil {
		return services.SearchFilter{}, err
	}
	if filter.EndDate, err = parseOptionalDate(query.Get("end_date")); err != nil {
		return services.SearchFilter{}, err
	}

	return filter, nil
}

func parseOptionalDate(value string) (types.Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return types.Date{}, nil
	}
	return types.ParseDate(value)
}
