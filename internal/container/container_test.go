package container

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/catalogsync/internal/config"
	"storefront/catalogsync/internal/domain"
)

func TestAdminFilters(t *testing.T) {
	got := AdminFilters(config.AdminFilterConfig{
		Category: "all",
		Gender:   "Women",
		Sort:     "price-low",
		PageSize: 100,
	})

	assert.Equal(t, domain.FilterState{
		Gender:   "Women",
		Sort:     domain.SortPriceLow,
		Page:     1,
		PageSize: 100,
	}, got)
}

func TestAdminFilters_Defaults(t *testing.T) {
	got := AdminFilters(config.AdminFilterConfig{Sort: "bogus"})

	assert.Equal(t, domain.SortFeatured, got.Sort)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, 24, got.PageSize)
}
