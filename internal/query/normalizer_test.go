package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/catalogsync/internal/domain"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		external url.Values
		local    LocalFilters
		want     domain.FilterState
	}{
		{
			name:  "defaults when nothing is set",
			local: LocalFilters{},
			want:  domain.FilterState{Sort: domain.SortFeatured, Page: 1, PageSize: DefaultPageSize},
		},
		{
			name:  "local all is omitted",
			local: LocalFilters{Category: "all", Gender: "ALL"},
			want:  domain.FilterState{Sort: domain.SortFeatured, Page: 1, PageSize: DefaultPageSize},
		},
		{
			name:     "external value wins over local",
			external: url.Values{"category": {"Dresses"}},
			local:    LocalFilters{Category: "Shirts"},
			want:     domain.FilterState{Category: "Dresses", Sort: domain.SortFeatured, Page: 1, PageSize: DefaultPageSize},
		},
		{
			name:     "external all falls back to local",
			external: url.Values{"gender": {"all"}},
			local:    LocalFilters{Gender: "Women"},
			want:     domain.FilterState{Gender: "Women", Sort: domain.SortFeatured, Page: 1, PageSize: DefaultPageSize},
		},
		{
			name:     "every dimension with sort and paging",
			external: url.Values{"search": {"  linen  "}, "season": {"Summer"}},
			local: LocalFilters{
				Style:    "Casual",
				Occasion: "Beach",
				Sort:     domain.SortPriceHigh,
				Page:     3,
				PageSize: 12,
			},
			want: domain.FilterState{
				Search:   "linen",
				Season:   "Summer",
				Style:    "Casual",
				Occasion: "Beach",
				Sort:     domain.SortPriceHigh,
				Page:     3,
				PageSize: 12,
			},
		},
		{
			name:     "navigation sort and pagination win",
			external: url.Values{"sort": {"price-low"}, "page": {"4"}, "limit": {"48"}},
			local:    LocalFilters{Sort: domain.SortPriceHigh, Page: 2, PageSize: 12},
			want:     domain.FilterState{Sort: domain.SortPriceLow, Page: 4, PageSize: 48},
		},
		{
			name:     "invalid navigation sort and page fall back to local",
			external: url.Values{"sort": {"cheapest"}, "page": {"0"}, "limit": {"x"}},
			local:    LocalFilters{Sort: domain.SortPriceHigh, Page: 2, PageSize: 12},
			want:     domain.FilterState{Sort: domain.SortPriceHigh, Page: 2, PageSize: 12},
		},
		{
			name:  "invalid sort and page are replaced",
			local: LocalFilters{Sort: "cheapest", Page: -2, PageSize: -1},
			want:  domain.FilterState{Sort: domain.SortFeatured, Page: 1, PageSize: DefaultPageSize},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.external, tt.local)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	external := url.Values{"category": {"Outerwear"}}
	local := LocalFilters{Gender: "Men", Sort: domain.SortPriceLow, Page: 2}

	assert.True(t, Normalize(external, local) == Normalize(external, local))
}

func TestEncode(t *testing.T) {
	t.Run("omits absent filters", func(t *testing.T) {
		params := Encode(domain.FilterState{Gender: "Women", Sort: domain.SortFeatured, Page: 2, PageSize: 24})

		assert.Equal(t, map[string]string{
			"gender": "Women",
			"sort":   "featured",
			"page":   "2",
			"limit":  "24",
		}, params)
		assert.NotContains(t, params, "category")
	})

	t.Run("category all never reaches the wire", func(t *testing.T) {
		state := Normalize(nil, LocalFilters{Category: "all"})
		assert.NotContains(t, Encode(state), "category")
	})
}
