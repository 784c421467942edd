package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"

	"storefront/catalogsync/internal/domain"
)

// DefaultRetryDelay is the pause before the degraded retry.
const DefaultRetryDelay = time.Second

// RetryPolicy wraps a Fetcher with a single degraded retry: when a fetch
// fails with a timeout or overload signal it waits briefly and asks once
// more for a smaller slice of the same window. Any other error, and any
// error from the retry itself, is returned to the caller. There is never a
// third attempt.
type RetryPolicy struct {
	fetcher Fetcher
	clock   clock.Clock
	delay   time.Duration
}

func NewRetryPolicy(fetcher Fetcher, clk clock.Clock, delay time.Duration) *RetryPolicy {
	if clk == nil {
		clk = clock.New()
	}
	if delay < 0 {
		delay = DefaultRetryDelay
	}
	return &RetryPolicy{
		fetcher: fetcher,
		clock:   clk,
		delay:   delay,
	}
}

func (r *RetryPolicy) Fetch(ctx context.Context, filters domain.FilterState) (*domain.CatalogPage, error) {
	page, err := r.fetcher.Fetch(ctx, filters)
	if err == nil {
		return page, nil
	}
	if !domain.IsTransient(err) {
		return nil, err
	}

	reduced := ReducedRequest(filters)
	log.Warnf("⏳ Page %d timed out (%v), retrying once with %d items per page",
		filters.Page, err, reduced.PageSize)

	if err := r.wait(ctx); err != nil {
		return nil, fmt.Errorf("degraded retry cancelled: %w", err)
	}

	page, err = r.fetcher.Fetch(ctx, reduced)
	if err != nil {
		log.Errorf("❌ Degraded retry for page %d failed: %v", filters.Page, err)
		return nil, err
	}

	page.Degraded = true
	page.Page = filters.Page
	page.TotalPages = domain.TotalPagesFor(page.TotalCount, filters.PageSize)

	log.Infof("✅ Degraded retry for page %d returned %d items", filters.Page, len(page.Items))
	return page, nil
}

func (r *RetryPolicy) wait(ctx context.Context) error {
	if r.delay == 0 {
		return ctx.Err()
	}

	timer := r.clock.Timer(r.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReducedRequest returns the request used by the degraded retry: a page size
// of at most half the original, with the page number moved so the result is
// the beginning of the originally requested window.
func ReducedRequest(filters domain.FilterState) domain.FilterState {
	if filters.PageSize <= 1 {
		return filters
	}

	offset := (max(filters.Page, 1) - 1) * filters.PageSize
	size := filters.PageSize / 2
	if offset%size != 0 {
		size = largestProperDivisor(filters.PageSize)
	}

	filters.PageSize = size
	filters.Page = offset/size + 1
	return filters
}

func largestProperDivisor(n int) int {
	for d := n / 2; d > 1; d-- {
		if n%d == 0 {
			return d
		}
	}
	return 1
}
