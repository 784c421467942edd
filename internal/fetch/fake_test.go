package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"storefront/catalogsync/internal/domain"
)

// fakeCatalog paginates an in-memory item list the way the remote API does.
type fakeCatalog struct {
	mu        sync.Mutex
	items     []domain.CatalogItem
	calls     []domain.FilterState
	failPages map[int]error
	failCalls map[int]error // 1-based call number -> error
	delays    map[int]time.Duration
	pages     func(total, size int) int
}

func newFakeCatalog(n int, gender string) *fakeCatalog {
	f := &fakeCatalog{
		failPages: map[int]error{},
		failCalls: map[int]error{},
		delays:    map[int]time.Duration{},
	}
	f.add(n, gender)
	return f
}

func (f *fakeCatalog) add(n int, gender string) {
	offset := len(f.items)
	for i := 0; i < n; i++ {
		f.items = append(f.items, domain.CatalogItem{
			ID:        fmt.Sprintf("%024x", offset+i+1),
			Name:      fmt.Sprintf("%s item %d", gender, i+1),
			Gender:    gender,
			BasePrice: decimal.NewFromInt(int64(20 + i)),
		})
	}
}

func (f *fakeCatalog) ListProducts(ctx context.Context, filters domain.FilterState) (*domain.ProductList, error) {
	f.mu.Lock()
	f.calls = append(f.calls, filters)
	call := len(f.calls)
	callErr := f.failCalls[call]
	pageErr := f.failPages[filters.Page]
	delay := f.delays[filters.Page]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if callErr != nil {
		return nil, callErr
	}
	if pageErr != nil {
		return nil, pageErr
	}

	var matching []domain.CatalogItem
	for _, item := range f.items {
		if filters.Gender == "" || item.Gender == filters.Gender {
			matching = append(matching, item)
		}
	}

	start := (filters.Page - 1) * filters.PageSize
	end := start + filters.PageSize
	if start > len(matching) {
		start = len(matching)
	}
	if end > len(matching) {
		end = len(matching)
	}

	pages := domain.TotalPagesFor(len(matching), filters.PageSize)
	if f.pages != nil {
		pages = f.pages(len(matching), filters.PageSize)
	}

	return &domain.ProductList{
		Data:  append([]domain.CatalogItem(nil), matching[start:end]...),
		Total: len(matching),
		Pages: pages,
	}, nil
}

func (f *fakeCatalog) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeCatalog) requests() []domain.FilterState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.FilterState(nil), f.calls...)
}

func transientErr() error {
	return &domain.Error{Code: domain.CodeTransientUnavailable, Message: "timeout", Status: 504}
}

func womenFilters(page int) domain.FilterState {
	return domain.FilterState{Gender: "Women", Sort: domain.SortFeatured, Page: page, PageSize: 24}
}
