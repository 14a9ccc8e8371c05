package listing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fleetrent/fleetrent/internal/cache"
	"github.com/fleetrent/fleetrent/internal/config"
	"github.com/fleetrent/fleetrent/internal/store"
)

type fakeLister struct {
	calls int
	rows  []map[string]any
	total int64
	err   error
	lastQ store.ListQuery
}

func (f *fakeLister) List(_ context.Context, _ string, q store.ListQuery) ([]map[string]any, int64, error) {
	f.calls++
	f.lastQ = q
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.rows, f.total, nil
}

func testTTLs() config.CacheConfig {
	return config.CacheConfig{
		ListTTL:   time.Minute,
		ActiveTTL: 30 * time.Second,
		SearchTTL: 45 * time.Second,
	}
}

func newTestService(lister *fakeLister) *Service {
	return NewService(lister, cache.NewStore(), testTTLs())
}

func TestService_Query_CacheHit(t *testing.T) {
	lister := &fakeLister{
		rows:  []map[string]any{{"id": "r1", "status": "active"}},
		total: 1,
	}
	svc := newTestService(lister)

	first, err := svc.Query(context.Background(), "rentals", Params{Page: 1, Limit: 15})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.Success {
		t.Fatal("expected success")
	}

	second, err := svc.Query(context.Background(), "rentals", Params{Page: 1, Limit: 15})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lister.calls != 1 {
		t.Errorf("expected a single remote call, got %d", lister.calls)
	}
	if len(second.Data) != 1 || second.Data[0]["id"] != "r1" {
		t.Errorf("cached result differs: %+v", second.Data)
	}
	if second.Pagination != first.Pagination {
		t.Errorf("pagination differs between calls: %+v vs %+v", second.Pagination, first.Pagination)
	}
}

func TestService_Query_KeyInsensitiveToEmptyFilters(t *testing.T) {
	lister := &fakeLister{total: 0}
	svc := newTestService(lister)

	if _, err := svc.Query(context.Background(), "rentals", Params{Page: 1, Limit: 15}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := Params{Page: 1, Limit: 15, Filters: map[string]string{"status": ""}}
	if _, err := svc.Query(context.Background(), "rentals", p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lister.calls != 1 {
		t.Errorf("empty filter should share the cache entry, got %d remote calls", lister.calls)
	}
}

func TestService_Query_DistinctParamsMiss(t *testing.T) {
	lister := &fakeLister{total: 0}
	svc := newTestService(lister)

	variants := []Params{
		{Page: 1, Limit: 15},
		{Page: 2, Limit: 15},
		{Page: 1, Limit: 30},
		{Page: 1, Limit: 15, Filters: map[string]string{"status": "active"}},
		{Page: 1, Limit: 15, Search: "tour"},
		{Page: 1, Limit: 15, SortBy: "created_at", SortOrder: "asc"},
	}
	for _, p := range variants {
		if _, err := svc.Query(context.Background(), "rentals", p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if lister.calls != len(variants) {
		t.Errorf("expected %d remote calls, got %d", len(variants), lister.calls)
	}
}

func TestService_Query_NormalizesPaging(t *testing.T) {
	lister := &fakeLister{total: 0}
	svc := newTestService(lister)

	if _, err := svc.Query(context.Background(), "rentals", Params{Page: 0, Limit: 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lister.lastQ.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, lister.lastQ.Limit)
	}
	if lister.lastQ.Offset != 0 {
		t.Errorf("expected offset 0, got %d", lister.lastQ.Offset)
	}

	if _, err := svc.Query(context.Background(), "rentals", Params{Page: 3, Limit: 500}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lister.lastQ.Limit != MaxLimit {
		t.Errorf("expected limit capped at %d, got %d", MaxLimit, lister.lastQ.Limit)
	}
	if lister.lastQ.Offset != 2*MaxLimit {
		t.Errorf("expected offset %d, got %d", 2*MaxLimit, lister.lastQ.Offset)
	}
}

func TestService_Query_FailureNotCached(t *testing.T) {
	lister := &fakeLister{err: errors.New("connection refused")}
	svc := newTestService(lister)

	res, err := svc.Query(context.Background(), "rentals", Params{Page: 1, Limit: 15})
	if err == nil {
		t.Fatal("expected error")
	}
	if res.Success {
		t.Error("expected Success=false")
	}
	if res.Error == "" {
		t.Error("expected error message in result")
	}

	// once the store recovers, the same query must reach it again
	lister.err = nil
	lister.total = 1
	lister.rows = []map[string]any{{"id": "r1"}}

	res, err = svc.Query(context.Background(), "rentals", Params{Page: 1, Limit: 15})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success || len(res.Data) != 1 {
		t.Errorf("expected fresh result after recovery, got %+v", res)
	}
	if lister.calls != 2 {
		t.Errorf("expected 2 remote calls, got %d", lister.calls)
	}
}

func TestService_Invalidate(t *testing.T) {
	lister := &fakeLister{total: 1, rows: []map[string]any{{"id": "r1"}}}
	svc := newTestService(lister)

	if _, err := svc.Query(context.Background(), "rentals", Params{Page: 1, Limit: 15}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Query(context.Background(), "vehicles", Params{Page: 1, Limit: 15}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if removed := svc.Invalidate("rentals"); removed != 1 {
		t.Errorf("expected 1 invalidated entry, got %d", removed)
	}

	// rentals misses, vehicles still serves from cache
	if _, err := svc.Query(context.Background(), "rentals", Params{Page: 1, Limit: 15}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Query(context.Background(), "vehicles", Params{Page: 1, Limit: 15}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lister.calls != 3 {
		t.Errorf("expected 3 remote calls, got %d", lister.calls)
	}
}

func TestService_TTLClasses(t *testing.T) {
	svc := newTestService(&fakeLister{})

	tests := []struct {
		name     string
		params   Params
		expected time.Duration
	}{
		{"plain list", Params{}, time.Minute},
		{"search", Params{Search: "tour"}, 45 * time.Second},
		{"active subset", Params{Filters: map[string]string{"status": "active"}}, 30 * time.Second},
		{"pending subset", Params{Filters: map[string]string{"status": "pending"}}, 30 * time.Second},
		{"completed is not volatile", Params{Filters: map[string]string{"status": "completed"}}, time.Minute},
		{"search wins over status", Params{Search: "tour", Filters: map[string]string{"status": "active"}}, 45 * time.Second},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := svc.ttlFor(tc.params); got != tc.expected {
				t.Errorf("ttlFor(%+v) = %v, expected %v", tc.params, got, tc.expected)
			}
		})
	}
}

func TestOperationName(t *testing.T) {
	if got := operationName(Params{}); got != "list" {
		t.Errorf("expected list, got %s", got)
	}
	if got := operationName(Params{Search: "tour"}); got != "search" {
		t.Errorf("expected search, got %s", got)
	}
}
