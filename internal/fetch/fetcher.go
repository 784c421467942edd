package fetch

import (
	"context"

	"storefront/catalogsync/internal/domain"
)

// Lister is the remote product listing call.
type Lister interface {
	ListProducts(ctx context.Context, filters domain.FilterState) (*domain.ProductList, error)
}

// Fetcher loads one page of the catalog.
type Fetcher interface {
	Fetch(ctx context.Context, filters domain.FilterState) (*domain.CatalogPage, error)
}

// PageFetcher issues exactly one listing request per call. Errors from the
// remote catalog are returned untouched.
type PageFetcher struct {
	lister Lister
}

func NewPageFetcher(lister Lister) *PageFetcher {
	return &PageFetcher{
		lister: lister,
	}
}

func (f *PageFetcher) Fetch(ctx context.Context, filters domain.FilterState) (*domain.CatalogPage, error) {
	list, err := f.lister.ListProducts(ctx, filters)
	if err != nil {
		return nil, err
	}

	totalPages := list.Pages
	if totalPages < 1 {
		totalPages = 1
	}

	return &domain.CatalogPage{
		Items:      list.Data,
		TotalCount: list.Total,
		TotalPages: totalPages,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
	}, nil
}
