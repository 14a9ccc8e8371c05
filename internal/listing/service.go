// Package listing is the paginated-query façade: it composes filter, sort
// and pagination parameters into one remote list query, memoizes full
// results in the query cache under class-specific TTLs, and exposes uniform
// pagination metadata so screens never branch on which view they asked for.
package listing

import (
	"context"
	"time"

	"github.com/fleetrent/fleetrent/internal/cache"
	"github.com/fleetrent/fleetrent/internal/config"
	"github.com/fleetrent/fleetrent/internal/logger"
	"github.com/fleetrent/fleetrent/internal/store"
)

const (
	// DefaultLimit is used when the caller supplies no page size.
	DefaultLimit = 15
	// MaxLimit caps the page size.
	MaxLimit = 100
)

// volatileStatuses name the mutable subsets whose cached pages go stale
// fastest; queries over them get the short TTL.
var volatileStatuses = map[string]bool{
	"active":      true,
	"pending":     true,
	"in_progress": true,
}

// Lister is the slice of the remote store the façade consumes.
type Lister interface {
	List(ctx context.Context, entity string, q store.ListQuery) ([]map[string]any, int64, error)
}

// Params are the caller-facing query parameters.
type Params struct {
	Page      int
	Limit     int
	Filters   map[string]string
	DateFrom  *time.Time
	DateTo    *time.Time
	Search    string
	SortBy    string
	SortOrder string
}

// Result is the uniform list response. Success is false only for remote
// failures; those results are never cached.
type Result struct {
	Success    bool             `json:"success"`
	Data       []map[string]any `json:"data"`
	Pagination Pagination       `json:"pagination"`
	Error      string           `json:"error,omitempty"`
}

// Service wires the remote store and the query cache together.
type Service struct {
	store Lister
	cache *cache.Store
	ttls  config.CacheConfig
}

// NewService builds the façade. ttls supplies the TTL per query class.
func NewService(lister Lister, qc *cache.Store, ttls config.CacheConfig) *Service {
	return &Service{store: lister, cache: qc, ttls: ttls}
}

// Query returns the requested page, served from cache when an identical
// query was answered within its TTL. On remote failure it returns a
// Success=false result along with the error; failures are never cached.
func (s *Service) Query(ctx context.Context, entity string, p Params) (Result, error) {
	p = normalize(p)
	key := cache.Key(entity, operationName(p), keyParams(p))

	if v, ok := s.cache.Get(key); ok {
		logger.WithComponent("listing").Debugf("cache hit: %s", key)
		return v.(Result), nil
	}

	q := store.ListQuery{
		Filters:   p.Filters,
		DateFrom:  p.DateFrom,
		DateTo:    p.DateTo,
		Search:    p.Search,
		SortBy:    p.SortBy,
		SortOrder: p.SortOrder,
		Offset:    (p.Page - 1) * p.Limit,
		Limit:     p.Limit,
	}

	rows, total, err := s.store.List(ctx, entity, q)
	if err != nil {
		return Result{Success: false, Error: err.Error()}, err
	}

	result := Result{
		Success:    true,
		Data:       rows,
		Pagination: NewPagination(total, p.Limit, p.Page),
	}
	s.cache.Set(key, result, s.ttlFor(p))
	return result, nil
}

// Invalidate drops every cached page for entity. Callers invoke it after any
// create/update/delete so subsequent reads are not served stale pages.
func (s *Service) Invalidate(entity string) int {
	removed := s.cache.InvalidateRelated(entity + ":")
	if removed > 0 {
		logger.WithComponent("listing").Debugf("invalidated %d cached queries for %s", removed, entity)
	}
	return removed
}

func normalize(p Params) Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func operationName(p Params) string {
	if p.Search != "" {
		return "search"
	}
	return "list"
}

// keyParams flattens Params for key derivation. Empty filters are dropped so
// {"status": ""} and an absent status yield the same key.
func keyParams(p Params) map[string]any {
	params := map[string]any{
		"page":  p.Page,
		"limit": p.Limit,
	}
	for col, val := range p.Filters {
		if val != "" {
			params["f_"+col] = val
		}
	}
	if p.DateFrom != nil {
		params["from"] = p.DateFrom.UTC().Format(time.RFC3339)
	}
	if p.DateTo != nil {
		params["to"] = p.DateTo.UTC().Format(time.RFC3339)
	}
	if p.Search != "" {
		params["search"] = p.Search
	}
	if p.SortBy != "" {
		params["sortBy"] = p.SortBy
	}
	if p.SortOrder != "" {
		params["sortOrder"] = p.SortOrder
	}
	return params
}

// ttlFor picks the TTL class: free-text searches get the medium TTL, queries
// over volatile status subsets the short one, plain lists the long one.
func (s *Service) ttlFor(p Params) time.Duration {
	if p.Search != "" {
		return s.ttls.SearchTTL
	}
	if volatileStatuses[p.Filters["status"]] {
		return s.ttls.ActiveTTL
	}
	return s.ttls.ListTTL
}
