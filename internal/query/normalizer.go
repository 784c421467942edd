package query

import (
	"net/url"
	"strconv"
	"strings"

	"storefront/catalogsync/internal/domain"
)

// AllSentinel is the UI value meaning "do not filter on this dimension".
const AllSentinel = "all"

// DefaultPageSize is used when the caller does not provide a positive size.
const DefaultPageSize = 24

// Parameter names shared by navigation links and the remote catalog API.
const (
	ParamSearch   = "search"
	ParamCategory = "category"
	ParamGender   = "gender"
	ParamSeason   = "season"
	ParamStyle    = "style"
	ParamOccasion = "occasion"
	ParamSort     = "sort"
	ParamPage     = "page"
	ParamLimit    = "limit"
)

// LocalFilters is the filter state held by the view itself, such as the
// values of its select boxes and search field.
type LocalFilters struct {
	Search   string
	Category string
	Gender   string
	Season   string
	Style    string
	Occasion string
	Sort     domain.SortMode
	Page     int
	PageSize int
}

// Normalize merges navigation parameters and local view state into the
// canonical query. For each filter dimension a navigation value other than
// "all" wins, then a local value other than "all"; otherwise the dimension is
// left out. Sort and pagination always get a value, again preferring valid
// navigation values over local ones.
func Normalize(external url.Values, local LocalFilters) domain.FilterState {
	state := domain.FilterState{
		Search:   pick(external, ParamSearch, local.Search),
		Category: pick(external, ParamCategory, local.Category),
		Gender:   pick(external, ParamGender, local.Gender),
		Season:   pick(external, ParamSeason, local.Season),
		Style:    pick(external, ParamStyle, local.Style),
		Occasion: pick(external, ParamOccasion, local.Occasion),
		Sort:     domain.SortFeatured,
		Page:     1,
		PageSize: DefaultPageSize,
	}

	if sort := domain.SortMode(strings.TrimSpace(external.Get(ParamSort))); sort.Valid() {
		state.Sort = sort
	} else if local.Sort.Valid() {
		state.Sort = local.Sort
	}
	if page := positive(external.Get(ParamPage)); page > 0 {
		state.Page = page
	} else if local.Page > 1 {
		state.Page = local.Page
	}
	if size := positive(external.Get(ParamLimit)); size > 0 {
		state.PageSize = size
	} else if local.PageSize > 0 {
		state.PageSize = local.PageSize
	}

	return state
}

func positive(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 0
	}
	return n
}

func pick(external url.Values, key, local string) string {
	if v := meaningful(external.Get(key)); v != "" {
		return v
	}
	return meaningful(local)
}

func meaningful(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, AllSentinel) {
		return ""
	}
	return v
}

// Encode renders the state as remote query parameters. Absent filters are
// not sent at all.
func Encode(state domain.FilterState) map[string]string {
	params := map[string]string{
		ParamSort:  state.Sort.String(),
		ParamPage:  strconv.Itoa(state.Page),
		ParamLimit: strconv.Itoa(state.PageSize),
	}

	optional := map[string]string{
		ParamSearch:   state.Search,
		ParamCategory: state.Category,
		ParamGender:   state.Gender,
		ParamSeason:   state.Season,
		ParamStyle:    state.Style,
		ParamOccasion: state.Occasion,
	}
	for key, value := range optional {
		if value != "" {
			params[key] = value
		}
	}

	return params
}
