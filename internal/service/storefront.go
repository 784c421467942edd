package service

import (
	"context"
	"net/url"

	log "github.com/sirupsen/logrus"

	"storefront/catalogsync/internal/cart"
	"storefront/catalogsync/internal/domain"
	"storefront/catalogsync/internal/favorite"
	"storefront/catalogsync/internal/fetch"
	"storefront/catalogsync/internal/query"
	"storefront/catalogsync/internal/state"
)

// Storefront is the shopper facing side: a product list that remembers its
// filters, favorites and the cart.
type Storefront struct {
	List      *fetch.ListController
	Favorites *favorite.Tracker
	Cart      *cart.Adapter

	preferences state.PreferenceStore
	userKey     string
}

func NewStorefront(
	list *fetch.ListController,
	favorites *favorite.Tracker,
	cart *cart.Adapter,
	preferences state.PreferenceStore,
	userKey string,
) *Storefront {
	return &Storefront{
		List:        list,
		Favorites:   favorites,
		Cart:        cart,
		preferences: preferences,
		userKey:     userKey,
	}
}

// Browse loads the product list for navigation parameters, falling back to
// the filters the user had last time for anything the parameters leave open.
func (s *Storefront) Browse(ctx context.Context, external url.Values) fetch.ListView {
	filters := query.Normalize(external, s.savedFilters(ctx))

	view, committed := s.List.Load(ctx, filters)
	if !committed {
		return s.List.Current()
	}
	return view
}

func (s *Storefront) savedFilters(ctx context.Context) query.LocalFilters {
	if s.preferences == nil {
		return query.LocalFilters{}
	}

	saved, err := s.preferences.LoadFilters(ctx, s.userKey)
	if err != nil {
		log.Warnf("⚠️ Failed to load saved filters: %v", err)
		return query.LocalFilters{}
	}
	if saved == nil {
		return query.LocalFilters{}
	}
	return localFilters(*saved)
}

func localFilters(f domain.FilterState) query.LocalFilters {
	return query.LocalFilters{
		Search:   f.Search,
		Category: f.Category,
		Gender:   f.Gender,
		Season:   f.Season,
		Style:    f.Style,
		Occasion: f.Occasion,
		Sort:     f.Sort,
		Page:     f.Page,
		PageSize: f.PageSize,
	}
}
