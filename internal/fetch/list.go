package fetch

import (
	"context"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"storefront/catalogsync/internal/domain"
)

// FailedToLoadMessage is shown on a product list whose first page failed.
const FailedToLoadMessage = "Failed to load products."

// FilterSink receives every filter state that produced a committed list,
// typically a debounced preference writer.
type FilterSink interface {
	Push(filters domain.FilterState)
}

// ListView is what a product list shows for one filter state.
type ListView struct {
	Filters    domain.FilterState
	Items      []domain.CatalogItem
	TotalCount int
	TotalPages int
	Degraded   bool   // fewer items than a full page because of the degraded retry
	Failed     bool   // the page could not be loaded; offer a retry
	Message    string // user facing text for a failed load
	Err        error
}

// ListController drives one product list. Every Load supersedes all earlier
// ones: a response that arrives after a newer Load started is dropped, so a
// slow answer for old filters never replaces a fast answer for new ones.
type ListController struct {
	fetcher    Fetcher
	sink       FilterSink
	generation atomic.Uint64

	mu      sync.RWMutex
	current ListView
}

func NewListController(fetcher Fetcher, sink FilterSink) *ListController {
	return &ListController{
		fetcher: fetcher,
		sink:    sink,
		current: ListView{TotalPages: 1},
	}
}

// Load fetches filters and, if no newer Load or Invalidate happened in the
// meantime, makes the result the current view. The boolean reports whether
// the result was committed.
func (c *ListController) Load(ctx context.Context, filters domain.FilterState) (ListView, bool) {
	gen := c.generation.Add(1)

	view := c.fetchView(ctx, filters)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation.Load() != gen {
		if filters.SameQuery(c.current.Filters) {
			log.Debugf("Dropping superseded response for page %d of the same query", filters.Page)
		} else {
			log.Debugf("Dropping stale product list response for page %d", filters.Page)
		}
		return view, false
	}

	c.current = view
	if c.sink != nil && !view.Failed {
		c.sink.Push(filters)
	}
	return view, true
}

// Invalidate makes every in-flight Load resolve without effect, for example
// when the list is no longer displayed.
func (c *ListController) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation.Add(1)
}

func (c *ListController) Current() ListView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *ListController) fetchView(ctx context.Context, filters domain.FilterState) ListView {
	page, err := c.fetcher.Fetch(ctx, filters)
	if err != nil {
		log.Errorf("❌ Failed to load products page %d: %v", filters.Page, err)

		message := FailedToLoadMessage
		if msg := domain.UserMessage(err); msg != domain.GenericFailureMessage {
			message = FailedToLoadMessage + " " + msg
		}
		return ListView{
			Filters:    filters,
			Items:      []domain.CatalogItem{},
			TotalPages: 1,
			Failed:     true,
			Message:    message,
			Err:        err,
		}
	}

	return ListView{
		Filters:    filters,
		Items:      page.Items,
		TotalCount: page.TotalCount,
		TotalPages: page.TotalPages,
		Degraded:   page.Degraded,
	}
}
