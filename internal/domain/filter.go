package domain

// SortMode orders the product list.
type SortMode string

func (s SortMode) String() string {
	return string(s)
}

const (
	SortFeatured  SortMode = "featured"
	SortPriceLow  SortMode = "price-low"
	SortPriceHigh SortMode = "price-high"
)

var SortModes = []SortMode{
	SortFeatured,
	SortPriceLow,
	SortPriceHigh,
}

// Valid reports whether s is one of the known sort modes.
func (s SortMode) Valid() bool {
	for _, m := range SortModes {
		if m == s {
			return true
		}
	}
	return false
}

// FilterState is the canonical product query. An empty filter field means
// the dimension is unconstrained; the sentinel "all" never appears here.
type FilterState struct {
	Search   string   `json:"search,omitempty"`
	Category string   `json:"category,omitempty"`
	Gender   string   `json:"gender,omitempty"`
	Season   string   `json:"season,omitempty"`
	Style    string   `json:"style,omitempty"`
	Occasion string   `json:"occasion,omitempty"`
	Sort     SortMode `json:"sort"`
	Page     int      `json:"page"`     // 1-based
	PageSize int      `json:"pageSize"` // items per page
}

// WithPage returns a copy of f pointing at another page.
func (f FilterState) WithPage(page int) FilterState {
	f.Page = page
	return f
}

// SameQuery reports whether f and other select the same result set,
// ignoring which page is being looked at.
func (f FilterState) SameQuery(other FilterState) bool {
	return f.WithPage(1) == other.WithPage(1)
}
