package drug

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// maxPage keeps (page-1)*limit inside int64 for any accepted limit.
const maxPage = math.MaxInt32

// PaginationRules controls how page and limit query parameters are read.
type PaginationRules struct {
	DefaultPage  int
	DefaultLimit int
	MaxLimit     int
	// Strict rejects malformed values instead of falling back to defaults.
	Strict bool
}

// Pagination is a parsed page window.
type Pagination struct {
	Page  int
	Limit int
}

// Offset returns the number of records to skip.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Parse reads page and limit from values.
func (r PaginationRules) Parse(values url.Values) (Pagination, error) {
	page, err := r.parseParam(values, "page", r.DefaultPage)
	if err != nil {
		return Pagination{}, err
	}
	limit, err := r.parseParam(values, "limit", r.DefaultLimit)
	if err != nil {
		return Pagination{}, err
	}

	if r.MaxLimit > 0 && limit > r.MaxLimit {
		limit = r.MaxLimit
	}
	if page > maxPage {
		page = maxPage
	}
	return Pagination{Page: page, Limit: limit}, nil
}

func (r PaginationRules) parseParam(values url.Values, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		if r.Strict {
			return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", ErrInvalidQuery, name, raw)
		}
		return fallback, nil
	}
	return n, nil
}

// TotalPages returns ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
