package services

import (
	"context"
	"strings"

	"github.com/simple-diaries/apiserver/types"
)

// Shape identifies which of the five mutually exclusive query strategies a
// filter set resolves to.
type Shape int

const (
	// ShapeAll returns every entry for the owner, newest diary date first.
	ShapeAll Shape = iota

	// ShapeExactDate matches a single diary date.
	ShapeExactDate

	// ShapeKeywordRange matches a keyword within an inclusive date range.
	ShapeKeywordRange

	// ShapeKeyword matches a keyword with no date restriction.
	ShapeKeyword

	// ShapeRange matches an inclusive date range with no keyword.
	ShapeRange
)

func (s Shape) String() string {
	switch s {
	case ShapeExactDate:
		return "exact_date"
	case ShapeKeywordRange:
		return "keyword_range"
	case ShapeKeyword:
		return "keyword"
	case ShapeRange:
		return "range"
	default:
		return "all"
	}
}

// SearchFilter combines the mandatory owner with the optional search
// inputs. It is an ephemeral per-request value, never persisted.
type SearchFilter struct {
	UserID    int64
	Keyword   string
	StartDate types.Date
	EndDate   types.Date
	Date      types.Date
}

// hasKeyword reports whether the keyword is meaningful: non-blank after
// trimming. A present-but-blank keyword counts as absent.
func (f SearchFilter) hasKeyword() bool {
	return strings.TrimSpace(f.Keyword) != ""
}

// hasRange reports whether both range bounds are present. A partial range
// never restricts the query.
func (f SearchFilter) hasRange() bool {
	return !f.StartDate.IsZero() && !f.EndDate.IsZero()
}

// ResolveShape selects exactly one query shape for the filter. Precedence,
// first match wins: exact date, keyword with full range, keyword alone,
// full range alone, everything.
func ResolveShape(f SearchFilter) Shape {
	switch {
	case !f.Date.IsZero():
		return ShapeExactDate
	case f.hasKeyword() && f.hasRange():
		return ShapeKeywordRange
	case f.hasKeyword():
		return ShapeKeyword
	case f.hasRange():
		return ShapeRange
	default:
		return ShapeAll
	}
}

// SearchService resolves a filter to a shape and dispatches the one
// matching repository query. Every shape is scoped to the filter's owner.
type SearchService struct {
	repo EntryRepository
}

func NewSearchService(repo EntryRepository) *SearchService {
	return &SearchService{repo: repo}
}

func (s *SearchService) Search(ctx context.Context, filter SearchFilter, offset, limit int) ([]types.Entry, int, error) {
	keyword := strings.TrimSpace(filter.Keyword)

	switch ResolveShape(filter) {
	case ShapeExactDate:
		return s.repo.FindByDate(ctx, filter.UserID, filter.Date, offset, limit)
	case ShapeKeywordRange:
		return s.repo.SearchKeywordInRange(ctx, filter.UserID, keyword, filter.StartDate, filter.EndDate, offset, limit)
	case ShapeKeyword:
		return s.repo.SearchKeyword(ctx, filter.UserID, keyword, offset, limit)
	case ShapeRange:
		return s.repo.FindInRange(ctx, filter.UserID, filter.StartDate, filter.EndDate, offset, limit)
	default:
		return s.repo.ListByUser(ctx, filter.UserID, offset, limit)
	}
}
